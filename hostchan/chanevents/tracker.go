// Package chanevents tracks read traffic flowing through a host channel.
package chanevents

// CounterWidth is the width, in bits, of the per-tick word counters. It
// matches the length field of a transfer-unit header, so a single tick can
// never carry more words than the counter can hold.
const CounterWidth = 13

const counterMask = (1 << CounterWidth) - 1

// A Tracker observes classified host-channel traffic and derives
// outstanding-read accounting.
//
// Within a tick, the channel adds the word counts of every read-request
// start and completion start it sees, across all lanes and sub-channels.
// Sync must be called exactly once per tick. The counts of a tick become
// observable through Sample one tick later, and are merged into the running
// totals at the same time.
//
// The per-tick counters are CounterWidth bits wide and wrap silently, the
// same way a fixed-width hardware counter would. The running totals are
// 64-bit and are treated as non-wrapping.
type Tracker struct {
	reqThisTick uint64
	rspThisTick uint64

	reqSample uint64
	rspSample uint64

	totalRequested uint64
	totalReturned  uint64
}

// NewTracker creates a Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// AddRequested accumulates words requested by read-request starts observed
// in the current tick.
func (t *Tracker) AddRequested(words int) {
	t.reqThisTick = (t.reqThisTick + uint64(words)) & counterMask
}

// AddReturned accumulates words carried by completion starts observed in the
// current tick.
func (t *Tracker) AddReturned(words int) {
	t.rspThisTick = (t.rspThisTick + uint64(words)) & counterMask
}

// Sync registers the current tick's counts. It must be called exactly once
// per tick.
func (t *Tracker) Sync() {
	t.totalRequested += t.reqSample
	t.totalReturned += t.rspSample

	t.reqSample = t.reqThisTick
	t.rspSample = t.rspThisTick

	t.reqThisTick = 0
	t.rspThisTick = 0
}

// Sample returns the registered word counts of the previous tick.
func (t *Tracker) Sample() (requested, returned uint64) {
	return t.reqSample, t.rspSample
}

// TotalRequested returns the running total of requested words.
func (t *Tracker) TotalRequested() uint64 {
	return t.totalRequested + t.reqSample
}

// TotalReturned returns the running total of returned words.
func (t *Tracker) TotalReturned() uint64 {
	return t.totalReturned + t.rspSample
}

// Outstanding returns the number of requested words for which no completion
// has been observed yet.
func (t *Tracker) Outstanding() uint64 {
	return t.TotalRequested() - t.TotalReturned()
}
