package hostchan

import "fmt"

// maxReorderDepth is the largest reorder window the tag field can address.
const maxReorderDepth = 256

type robEntry struct {
	req   *ReadReq
	rsp   *DataReadyRsp
	ready bool
	valid bool
}

// A reorderBuffer restores request order to read completions that the host
// may return out of order. Reads allocate an entry, and therefore a tag, in
// issue order. Completions land in the entry their tag names. Entries leave
// the buffer strictly in allocation order, once ready.
//
// The buffer is a ring. The slot index doubles as the tag, which keeps tags
// unique among outstanding reads without a free list.
type reorderBuffer struct {
	entries []robEntry
	head    int
	tail    int
	count   int
}

func newReorderBuffer(depth int) *reorderBuffer {
	if depth <= 0 || depth > maxReorderDepth {
		panic(fmt.Sprintf(
			"reorder depth must be in [1, %d], got %d",
			maxReorderDepth, depth))
	}

	return &reorderBuffer{entries: make([]robEntry, depth)}
}

func (b *reorderBuffer) canAllocate() bool {
	return b.count < len(b.entries)
}

func (b *reorderBuffer) allocate(req *ReadReq) uint8 {
	if !b.canAllocate() {
		panic("allocating in a full reorder buffer")
	}

	tag := uint8(b.tail)
	b.entries[b.tail] = robEntry{req: req, valid: true}
	b.tail = (b.tail + 1) % len(b.entries)
	b.count++

	return tag
}

func (b *reorderBuffer) complete(tag uint8, rsp *DataReadyRsp) {
	entry := &b.entries[int(tag)]
	if !entry.valid || entry.ready {
		panic(fmt.Sprintf("completion carries unexpected tag %d", tag))
	}

	entry.rsp = rsp
	entry.ready = true
}

func (b *reorderBuffer) headReady() bool {
	return b.count > 0 && b.entries[b.head].ready
}

func (b *reorderBuffer) popHead() (*ReadReq, *DataReadyRsp) {
	if !b.headReady() {
		panic("popping a reorder buffer whose head is not ready")
	}

	entry := b.entries[b.head]
	b.entries[b.head] = robEntry{}
	b.head = (b.head + 1) % len(b.entries)
	b.count--

	return entry.req, entry.rsp
}

func (b *reorderBuffer) reqByTag(tag uint8) *ReadReq {
	entry := b.entries[int(tag)]
	if !entry.valid {
		return nil
	}

	return entry.req
}
