package directconnection

import "github.com/michelleyho/ofs-platform-afu-bbb/sim"

// Builder can help build direct connections.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
}

// MakeBuilder creates a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the engine that drives the connection.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithFreq sets the frequency of the connection.
func (b Builder) WithFreq(f sim.Freq) Builder {
	b.freq = f
	return b
}

// Build builds a new Comp.
func (b Builder) Build(name string) *Comp {
	c := new(Comp)

	c.TickingComponent = sim.NewSecondaryTickingComponent(
		name, b.engine, b.freq, c)
	c.endByDst = make(map[sim.RemotePort]sim.Port)

	c.AddMiddleware(&middleware{Comp: c})

	return c
}
