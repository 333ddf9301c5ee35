package hostchan

import (
	"fmt"

	"github.com/michelleyho/ofs-platform-afu-bbb/sim"
)

// TransferKind classifies a transfer unit on the raw side of the channel.
type TransferKind int

// Transfer-unit kinds.
const (
	KindMemRdReq TransferKind = iota
	KindMemWrReq
	KindCplData
	KindCpl
)

func (k TransferKind) String() string {
	switch k {
	case KindMemRdReq:
		return "MemRdReq"
	case KindMemWrReq:
		return "MemWrReq"
	case KindCplData:
		return "CplData"
	case KindCpl:
		return "Cpl"
	}

	return fmt.Sprintf("TransferKind(%d)", int(k))
}

// MaxLengthWords is the largest payload a single transfer unit can describe.
// The length field of a header is 13 bits wide.
const MaxLengthWords = 1<<13 - 1

// A transfer-unit header is one 64-bit word:
//
//	[63:62] kind
//	[61]    start of transfer
//	[60:48] length in words
//	[47:40] tag
//	[39:0]  word address
const (
	headerKindShift = 62
	headerSOTBit    = uint64(1) << 61
	headerLenShift  = 48
	headerLenMask   = uint64(MaxLengthWords)
	headerTagShift  = 40
	headerTagMask   = uint64(0xff)
	headerAddrMask  = uint64(1)<<40 - 1
)

// A TransferUnit is one request or completion as it appears on the raw side
// of the channel, independent of the wire encoding that frames it.
type TransferUnit struct {
	Kind    TransferKind
	SOT     bool
	Length  int
	Tag     uint8
	Addr    uint64
	Payload []uint64
}

// HasPayload returns true if units of the kind carry payload words after the
// header.
func (u TransferUnit) HasPayload() bool {
	return u.Kind == KindMemWrReq || u.Kind == KindCplData
}

// EncodeHeader packs the metadata of a transfer unit into a header word.
func EncodeHeader(u TransferUnit) uint64 {
	if u.Length > MaxLengthWords {
		panic("transfer unit length exceeds the header length field")
	}

	header := uint64(u.Kind) << headerKindShift
	if u.SOT {
		header |= headerSOTBit
	}
	header |= (uint64(u.Length) & headerLenMask) << headerLenShift
	header |= uint64(u.Tag) << headerTagShift
	header |= u.Addr & headerAddrMask

	return header
}

// DecodeHeader unpacks a header word. The returned unit has no payload
// attached.
func DecodeHeader(word uint64) TransferUnit {
	return TransferUnit{
		Kind:   TransferKind(word >> headerKindShift),
		SOT:    word&headerSOTBit != 0,
		Length: int((word >> headerLenShift) & headerLenMask),
		Tag:    uint8((word >> headerTagShift) & headerTagMask),
		Addr:   word & headerAddrMask,
	}
}

// A RawFlit carries one lane-tick worth of wire-encoded words between the
// channel and the host. How headers and payload words are laid out inside
// the flit is defined by the encoding in use.
type RawFlit struct {
	sim.MsgMeta

	Words []uint64
}

// Meta returns the meta data of the message.
func (f *RawFlit) Meta() *sim.MsgMeta {
	return &f.MsgMeta
}

// Clone returns a cloned RawFlit with a different ID.
func (f *RawFlit) Clone() sim.Msg {
	cloneMsg := *f
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// RawFlitBuilder can build raw flits.
type RawFlitBuilder struct {
	src, dst sim.RemotePort
	words    []uint64
}

// WithSrc sets the source of the flit to build.
func (b RawFlitBuilder) WithSrc(src sim.RemotePort) RawFlitBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the flit to build.
func (b RawFlitBuilder) WithDst(dst sim.RemotePort) RawFlitBuilder {
	b.dst = dst
	return b
}

// WithWords sets the wire words that the flit carries.
func (b RawFlitBuilder) WithWords(words []uint64) RawFlitBuilder {
	b.words = words
	return b
}

// Build creates a new RawFlit.
func (b RawFlitBuilder) Build() *RawFlit {
	f := &RawFlit{}
	f.ID = sim.GetIDGenerator().Generate()
	f.Src = b.src
	f.Dst = b.dst
	f.TrafficBytes = len(b.words) * WordBytes
	f.Words = b.words

	return f
}
