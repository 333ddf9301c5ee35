package hostmem

import (
	"github.com/michelleyho/ofs-platform-afu-bbb/hostchan"
	"github.com/michelleyho/ofs-platform-afu-bbb/sim"
)

// A Builder can build host memory components.
type Builder struct {
	engine          sim.Engine
	freq            sim.Freq
	encoding        hostchan.Encoding
	segmentsPerFlit int
	latency         int
	maxJitter       int
	storage         *Storage
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:            1 * sim.GHz,
		encoding:        hostchan.EncodingPacked,
		segmentsPerFlit: 4,
		latency:         100,
	}
}

// WithEngine sets the event engine that drives the component.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the component.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithEncoding sets the wire encoding of the attached channel. It must match
// the channel's encoding.
func (b Builder) WithEncoding(encoding hostchan.Encoding) Builder {
	b.encoding = encoding
	return b
}

// WithSegmentsPerFlit sets how many transfer units a packed flit can start.
func (b Builder) WithSegmentsPerFlit(n int) Builder {
	b.segmentsPerFlit = n
	return b
}

// WithLatency sets the access latency in cycles.
func (b Builder) WithLatency(cycles int) Builder {
	b.latency = cycles
	return b
}

// WithMaxJitter sets the largest extra read latency in cycles. A non-zero
// jitter lets read completions leave the host out of order.
func (b Builder) WithMaxJitter(cycles int) Builder {
	b.maxJitter = cycles
	return b
}

// WithStorage sets the backing store to use. A fresh store is created if
// none is given.
func (b Builder) WithStorage(storage *Storage) Builder {
	b.storage = storage
	return b
}

// Build creates a host memory component with the given name.
func (b Builder) Build(name string) *Comp {
	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.codec = hostchan.NewCodec(b.encoding, b.segmentsPerFlit)
	c.latency = b.latency
	c.maxJitter = b.maxJitter
	c.lcgState = 1

	c.storage = b.storage
	if c.storage == nil {
		c.storage = NewStorage()
	}

	c.TopPort = sim.NewPort(c, 4, 4, name+".Top")
	c.AddPort("Top", c.TopPort)

	c.AddMiddleware(&middleware{Comp: c})

	return c
}
