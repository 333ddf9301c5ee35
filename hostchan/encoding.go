package hostchan

import "fmt"

// Encoding identifies the wire encoding used on the raw side of the channel.
type Encoding int

// Supported wire encodings.
const (
	// EncodingPacked frames transfer units as a packed multi-segment
	// stream. A flit holds a sequence of units back to back, each one a
	// header word followed by its payload words.
	EncodingPacked Encoding = iota

	// EncodingPerLane frames exactly one transfer unit per flit, the way a
	// streaming interface with sideband metadata would.
	EncodingPerLane
)

func (e Encoding) String() string {
	switch e {
	case EncodingPacked:
		return "Packed"
	case EncodingPerLane:
		return "PerLane"
	}

	return fmt.Sprintf("Encoding(%d)", int(e))
}

// A Codec translates between transfer units and the wire words of raw flits.
// Implementations are stateless with respect to traffic. They never alter
// the count, order, or content of the units they frame.
type Codec interface {
	// MaxUnitsPerFlit returns how many transfer units a single flit can
	// start.
	MaxUnitsPerFlit() int

	// Pack frames the given units into the wire words of one flit. The
	// number of units must not exceed MaxUnitsPerFlit.
	Pack(units []TransferUnit) []uint64

	// Unpack recovers the transfer units framed in the wire words of one
	// flit.
	Unpack(words []uint64) []TransferUnit
}

// NewCodec returns the codec for an encoding. An unrecognized encoding is a
// configuration error and panics.
func NewCodec(encoding Encoding, segmentsPerFlit int) Codec {
	switch encoding {
	case EncodingPacked:
		return &packedCodec{segmentsPerFlit: segmentsPerFlit}
	case EncodingPerLane:
		return &perLaneCodec{}
	}

	panic(fmt.Sprintf("unknown host-channel encoding %d", int(encoding)))
}

type packedCodec struct {
	segmentsPerFlit int
}

func (c *packedCodec) MaxUnitsPerFlit() int {
	return c.segmentsPerFlit
}

func (c *packedCodec) Pack(units []TransferUnit) []uint64 {
	if len(units) == 0 || len(units) > c.segmentsPerFlit {
		panic("packed codec cannot frame the unit count into one flit")
	}

	var words []uint64
	for _, u := range units {
		words = append(words, EncodeHeader(u))
		words = append(words, u.Payload...)
	}

	return words
}

func (c *packedCodec) Unpack(words []uint64) []TransferUnit {
	var units []TransferUnit

	for i := 0; i < len(words); {
		u := DecodeHeader(words[i])
		i++

		if u.HasPayload() {
			if i+u.Length > len(words) {
				panic("packed flit truncates the payload of a transfer unit")
			}
			u.Payload = words[i : i+u.Length]
			i += u.Length
		}

		units = append(units, u)
	}

	if len(units) > c.segmentsPerFlit {
		panic("packed flit starts more transfer units than the encoding allows")
	}

	return units
}

type perLaneCodec struct{}

func (c *perLaneCodec) MaxUnitsPerFlit() int {
	return 1
}

func (c *perLaneCodec) Pack(units []TransferUnit) []uint64 {
	if len(units) != 1 {
		panic("per-lane codec frames exactly one transfer unit per flit")
	}

	u := units[0]
	words := []uint64{EncodeHeader(u)}
	words = append(words, u.Payload...)

	return words
}

func (c *perLaneCodec) Unpack(words []uint64) []TransferUnit {
	if len(words) == 0 {
		panic("per-lane flit carries no header")
	}

	u := DecodeHeader(words[0])
	if u.HasPayload() {
		if 1+u.Length != len(words) {
			panic("per-lane flit length disagrees with its header")
		}
		u.Payload = words[1 : 1+u.Length]
	} else if len(words) != 1 {
		panic("per-lane flit length disagrees with its header")
	}

	return []TransferUnit{u}
}
