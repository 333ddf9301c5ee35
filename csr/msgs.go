package csr

import "github.com/michelleyho/ofs-platform-afu-bbb/sim"

// A ReadReq asks the control plane for the value of one register. The
// response arrives exactly two control-plane ticks later.
type ReadReq struct {
	sim.MsgMeta

	Addr uint64
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

// ReadReqBuilder can build register read requests.
type ReadReqBuilder struct {
	src, dst sim.RemotePort
	addr     uint64
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

// WithAddr sets the register address to read.
func (b ReadReqBuilder) WithAddr(addr uint64) ReadReqBuilder {
	b.addr = addr
	return b
}

// Build creates a new ReadReq.
func (b ReadReqBuilder) Build() *ReadReq {
	r := &ReadReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.Addr = b.addr

	return r
}

// A WriteReq updates the value of one register. There is no acknowledgement;
// effects are observable through subsequent reads.
type WriteReq struct {
	sim.MsgMeta

	Addr uint64
	Data uint64
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

// WriteReqBuilder can build register write requests.
type WriteReqBuilder struct {
	src, dst sim.RemotePort
	addr     uint64
	data     uint64
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

// WithAddr sets the register address to write.
func (b WriteReqBuilder) WithAddr(addr uint64) WriteReqBuilder {
	b.addr = addr
	return b
}

// WithData sets the value to write.
func (b WriteReqBuilder) WithData(data uint64) WriteReqBuilder {
	b.data = data
	return b
}

// Build creates a new WriteReq.
func (b WriteReqBuilder) Build() *WriteReq {
	r := &WriteReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.Addr = b.addr
	r.Data = b.data

	return r
}

// A ReadRsp carries the value of a completed register read.
type ReadRsp struct {
	sim.MsgMeta

	RspTo string
	Data  uint64
}

// Meta returns the meta data of the message.
func (r *ReadRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned ReadRsp with a different ID.
func (r *ReadRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the original request.
func (r *ReadRsp) GetRspTo() string {
	return r.RspTo
}

// ReadRspBuilder can build register read responses.
type ReadRspBuilder struct {
	src, dst sim.RemotePort
	rspTo    string
	data     uint64
}

// WithSrc sets the source of the response to build.
func (b ReadRspBuilder) WithSrc(src sim.RemotePort) ReadRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b ReadRspBuilder) WithDst(dst sim.RemotePort) ReadRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets the ID of the request that the response responds to.
func (b ReadRspBuilder) WithRspTo(id string) ReadRspBuilder {
	b.rspTo = id
	return b
}

// WithData sets the value that the response carries.
func (b ReadRspBuilder) WithData(data uint64) ReadRspBuilder {
	b.data = data
	return b
}

// Build creates a new ReadRsp.
func (b ReadRspBuilder) Build() *ReadRsp {
	r := &ReadRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.RspTo = b.rspTo
	r.Data = b.data

	return r
}
