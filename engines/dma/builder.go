package dma

import "github.com/michelleyho/ofs-platform-afu-bbb/sim"

// A Builder can build copy engines.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	reqARemote sim.RemotePort
	reqBRemote sim.RemotePort
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
	}
}

// WithEngine sets the event engine that drives the copy engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the copy engine.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithChannelRemotes sets the host-channel ports that requests are sent to.
// Reads go to the read-only sub-channel, writes to the general one.
func (b Builder) WithChannelRemotes(reqA, reqB sim.RemotePort) Builder {
	b.reqARemote = reqA
	b.reqBRemote = reqB
	return b
}

// Build creates a copy engine with the given name.
func (b Builder) Build(name string) *Comp {
	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.reqARemote = b.reqARemote
	c.reqBRemote = b.reqBRemote
	c.readOffsets = make(map[string]uint64)
	c.writeWords = make(map[string]uint64)

	c.MemPort = sim.NewPort(c, 4, 4, name+".Mem")
	c.AddPort("Mem", c.MemPort)

	c.AddMiddleware(&middleware{Comp: c})

	return c
}
