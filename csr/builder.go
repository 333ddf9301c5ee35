package csr

import "github.com/michelleyho/ofs-platform-afu-bbb/sim"

// A Builder can build control planes.
type Builder struct {
	engine       sim.Engine
	freq         sim.Freq
	counterFreq  sim.Freq
	engines      []Engine
	holdDuration int
	counterWidth int
	dfh          uint64
	guidLo       uint64
	guidHi       uint64
	nextAFU      uint64
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:         1 * sim.GHz,
		counterFreq:  250 * sim.MHz,
		holdDuration: 4,
		counterWidth: 40,
		dfh:          0x1000010000000000,
	}
}

// WithEngine sets the event engine that drives the control plane.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the control domain.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithCounterFreq sets the frequency of the counter domain.
func (b Builder) WithCounterFreq(freq sim.Freq) Builder {
	b.counterFreq = freq
	return b
}

// WithComputeEngines sets the engines that the control plane governs, in
// bitmask order.
func (b Builder) WithComputeEngines(engines []Engine) Builder {
	b.engines = engines
	return b
}

// WithHoldResetDuration sets how many ticks newly-enabled engines are held
// in reset.
func (b Builder) WithHoldResetDuration(ticks int) Builder {
	b.holdDuration = ticks
	return b
}

// WithCounterWidth sets the width, in bits, of the cycle counters.
func (b Builder) WithCounterWidth(bits int) Builder {
	b.counterWidth = bits
	return b
}

// WithGUID sets the identity GUID exposed through the identity block.
func (b Builder) WithGUID(lo, hi uint64) Builder {
	b.guidLo = lo
	b.guidHi = hi
	return b
}

// WithNextAFUOffset sets the next-AFU offset exposed through the identity
// block. Zero marks the end of the feature list.
func (b Builder) WithNextAFUOffset(offset uint64) Builder {
	b.nextAFU = offset
	return b
}

// Build creates a control plane with the given name.
func (b Builder) Build(name string) *Comp {
	if len(b.engines) > 62 {
		panic("the command word cannot carry a mask for more than 62 engines")
	}

	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.engines = b.engines
	c.holdDuration = b.holdDuration
	c.counterMask = 1<<b.counterWidth - 1
	c.dfh = b.dfh
	c.guidLo = b.guidLo
	c.guidHi = b.guidHi
	c.nextAFU = b.nextAFU
	c.clockHintMHz = uint64(b.freq / sim.MHz)

	c.activeOut = sim.NewDomainCrossing(name + ".ActiveCrossing")
	c.cyclesIn = sim.NewDomainCrossing(name + ".CyclesCrossing")
	c.counterDomain = newCounterDomain(
		name+".CounterDomain", b.engine, b.counterFreq,
		c.activeOut, c.cyclesIn, c.counterMask)

	c.CtrlPort = sim.NewPort(c, 4, 4, name+".Ctrl")
	c.AddPort("Ctrl", c.CtrlPort)

	c.AddMiddleware(&ctrlMiddleware{Comp: c})

	return c
}
