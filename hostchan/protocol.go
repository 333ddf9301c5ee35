// Package hostchan provides the host-channel adapter that bridges raw
// wire-encoded host-memory traffic and the canonical request/response
// channels that compute engines use.
package hostchan

import (
	"github.com/michelleyho/ofs-platform-afu-bbb/sim"
)

var readReqByteOverhead = 12
var writeReqByteOverhead = 12
var rspByteOverhead = 4

// WordBytes is the number of bytes in one payload word.
const WordBytes = 8

// A ReadReq asks the host channel to fetch data from host memory.
type ReadReq struct {
	sim.MsgMeta

	Addr        uint64
	LengthWords int
}

// Meta returns the meta data of the message.
func (r *ReadReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned ReadReq with a different ID.
func (r *ReadReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// ReadReqBuilder can build read requests.
type ReadReqBuilder struct {
	src, dst    sim.RemotePort
	addr        uint64
	lengthWords int
}

// WithSrc sets the source of the request to build.
func (b ReadReqBuilder) WithSrc(src sim.RemotePort) ReadReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b ReadReqBuilder) WithDst(dst sim.RemotePort) ReadReqBuilder {
	b.dst = dst
	return b
}

// WithAddr sets the word address that the request reads from.
func (b ReadReqBuilder) WithAddr(addr uint64) ReadReqBuilder {
	b.addr = addr
	return b
}

// WithLengthWords sets the number of words that the request reads.
func (b ReadReqBuilder) WithLengthWords(n int) ReadReqBuilder {
	b.lengthWords = n
	return b
}

// Build creates a new ReadReq.
func (b ReadReqBuilder) Build() *ReadReq {
	r := &ReadReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = readReqByteOverhead
	r.Addr = b.addr
	r.LengthWords = b.lengthWords

	return r
}

// A WriteReq asks the host channel to write data to host memory.
type WriteReq struct {
	sim.MsgMeta

	Addr uint64
	Data []uint64
}

// Meta returns the meta data of the message.
func (r *WriteReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned WriteReq with a different ID.
func (r *WriteReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// WriteReqBuilder can build write requests.
type WriteReqBuilder struct {
	src, dst sim.RemotePort
	addr     uint64
	data     []uint64
}

// WithSrc sets the source of the request to build.
func (b WriteReqBuilder) WithSrc(src sim.RemotePort) WriteReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b WriteReqBuilder) WithDst(dst sim.RemotePort) WriteReqBuilder {
	b.dst = dst
	return b
}

// WithAddr sets the word address that the request writes to.
func (b WriteReqBuilder) WithAddr(addr uint64) WriteReqBuilder {
	b.addr = addr
	return b
}

// WithData sets the payload words of the request.
func (b WriteReqBuilder) WithData(data []uint64) WriteReqBuilder {
	b.data = data
	return b
}

// Build creates a new WriteReq.
func (b WriteReqBuilder) Build() *WriteReq {
	r := &WriteReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = writeReqByteOverhead + len(b.data)*WordBytes
	r.Addr = b.addr
	r.Data = b.data

	return r
}

// A DataReadyRsp delivers the data of a completed read back to the
// requester.
type DataReadyRsp struct {
	sim.MsgMeta

	RspTo string
	Data  []uint64
}

// Meta returns the meta data of the message.
func (r *DataReadyRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned DataReadyRsp with a different ID.
func (r *DataReadyRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the original request.
func (r *DataReadyRsp) GetRspTo() string {
	return r.RspTo
}

// DataReadyRspBuilder can build data-ready responses.
type DataReadyRspBuilder struct {
	src, dst sim.RemotePort
	rspTo    string
	data     []uint64
}

// WithSrc sets the source of the response to build.
func (b DataReadyRspBuilder) WithSrc(src sim.RemotePort) DataReadyRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b DataReadyRspBuilder) WithDst(dst sim.RemotePort) DataReadyRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets the ID of the request that the response responds to.
func (b DataReadyRspBuilder) WithRspTo(id string) DataReadyRspBuilder {
	b.rspTo = id
	return b
}

// WithData sets the payload words of the response.
func (b DataReadyRspBuilder) WithData(data []uint64) DataReadyRspBuilder {
	b.data = data
	return b
}

// Build creates a new DataReadyRsp.
func (b DataReadyRspBuilder) Build() *DataReadyRsp {
	r := &DataReadyRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = rspByteOverhead + len(b.data)*WordBytes
	r.RspTo = b.rspTo
	r.Data = b.data

	return r
}

// A WriteDoneRsp acknowledges that a write request has been accepted by the
// host.
type WriteDoneRsp struct {
	sim.MsgMeta

	RspTo string
}

// Meta returns the meta data of the message.
func (r *WriteDoneRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned WriteDoneRsp with a different ID.
func (r *WriteDoneRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the original request.
func (r *WriteDoneRsp) GetRspTo() string {
	return r.RspTo
}

// WriteDoneRspBuilder can build write-done responses.
type WriteDoneRspBuilder struct {
	src, dst sim.RemotePort
	rspTo    string
}

// WithSrc sets the source of the response to build.
func (b WriteDoneRspBuilder) WithSrc(src sim.RemotePort) WriteDoneRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b WriteDoneRspBuilder) WithDst(dst sim.RemotePort) WriteDoneRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets the ID of the request that the response responds to.
func (b WriteDoneRspBuilder) WithRspTo(id string) WriteDoneRspBuilder {
	b.rspTo = id
	return b
}

// Build creates a new WriteDoneRsp.
func (b WriteDoneRspBuilder) Build() *WriteDoneRsp {
	r := &WriteDoneRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = rspByteOverhead
	r.RspTo = b.rspTo

	return r
}
