package sim

import "sync"

// A DomainCrossing carries a level signal from one timing domain to another.
//
// The source domain writes the signal with Put. The destination domain calls
// Sync once per its own tick, which shifts the signal through two
// destination-domain registers. Get returns the value behind the second
// register, so the destination always observes either the old or the new
// value, never a torn one, with two destination-domain ticks of latency.
type DomainCrossing struct {
	name string
	lock sync.Mutex

	input  uint64
	staged uint64
	stable uint64
}

// NewDomainCrossing creates a DomainCrossing.
func NewDomainCrossing(name string) *DomainCrossing {
	NameMustBeValid(name)

	return &DomainCrossing{name: name}
}

// Name returns the name of the crossing.
func (c *DomainCrossing) Name() string {
	return c.name
}

// Put updates the source-domain side of the crossing.
func (c *DomainCrossing) Put(v uint64) {
	c.lock.Lock()
	c.input = v
	c.lock.Unlock()
}

// Sync advances the destination-domain registers. It must be called exactly
// once per destination-domain tick.
func (c *DomainCrossing) Sync() {
	c.lock.Lock()
	c.stable = c.staged
	c.staged = c.input
	c.lock.Unlock()
}

// Get returns the value as observed by the destination domain.
func (c *DomainCrossing) Get() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.stable
}
