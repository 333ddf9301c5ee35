package csr

import "github.com/michelleyho/ofs-platform-afu-bbb/sim"

// Bits of the level signal the control plane sends into the counter domain.
const (
	crossingActiveBit = 1 << 0
	crossingArmedBit  = 1 << 1
)

// A CounterDomain keeps the second activity cycle counter in its own timing
// domain. The activity and reset-arm signals cross into this domain through
// a two-register synchronizer, and the counter value crosses back the same
// way, so neither domain ever observes a torn value.
type CounterDomain struct {
	*sim.TickingComponent

	in  *sim.DomainCrossing
	out *sim.DomainCrossing

	counterMask uint64
	cycles      uint64
}

// Tick advances the counter-domain cycle counter by one of its own ticks.
func (d *CounterDomain) Tick() bool {
	d.in.Sync()
	signal := d.in.Get()

	active := signal&crossingActiveBit != 0
	armed := signal&crossingArmedBit != 0

	switch {
	case armed:
		d.cycles = 0
	case active:
		d.cycles = (d.cycles + 1) & d.counterMask
	}

	d.out.Put(d.cycles)

	return active || armed
}

// Cycles returns the counter-domain cycle counter.
func (d *CounterDomain) Cycles() uint64 {
	return d.cycles
}

func newCounterDomain(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	in, out *sim.DomainCrossing,
	counterMask uint64,
) *CounterDomain {
	d := new(CounterDomain)
	d.TickingComponent = sim.NewTickingComponent(name, engine, freq, d)
	d.in = in
	d.out = out
	d.counterMask = counterMask

	return d
}
