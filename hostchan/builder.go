package hostchan

import (
	"github.com/michelleyho/ofs-platform-afu-bbb/hostchan/chanevents"
	"github.com/michelleyho/ofs-platform-afu-bbb/pipelining"
	"github.com/michelleyho/ofs-platform-afu-bbb/sim"
)

// A Builder can build host channels.
type Builder struct {
	engine            sim.Engine
	freq              sim.Freq
	encoding          Encoding
	numLanes          int
	segmentsPerFlit   int
	numPipelineStages int
	reorderEnabled    bool
	reorderDepth      int
	hostRemote        sim.RemotePort
	portBufSize       int
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:            1 * sim.GHz,
		encoding:        EncodingPacked,
		numLanes:        1,
		segmentsPerFlit: 4,
		reorderDepth:    64,
		portBufSize:     4,
	}
}

// WithEngine sets the event engine that drives the channel.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the channel.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithEncoding sets the wire encoding used on the raw side of the channel.
func (b Builder) WithEncoding(encoding Encoding) Builder {
	b.encoding = encoding
	return b
}

// WithNumLanes sets the number of raw flits the channel can take in per
// tick.
func (b Builder) WithNumLanes(n int) Builder {
	b.numLanes = n
	return b
}

// WithSegmentsPerFlit sets how many transfer units a packed flit can start.
// The per-lane encoding ignores this parameter.
func (b Builder) WithSegmentsPerFlit(n int) Builder {
	b.segmentsPerFlit = n
	return b
}

// WithNumPipelineStages sets the number of registering stages on the
// completion path. Zero stages is a pure bypass.
func (b Builder) WithNumPipelineStages(n int) Builder {
	b.numPipelineStages = n
	return b
}

// WithCompletionReorder enables the reorder buffer on the completion path,
// with the given number of entries.
func (b Builder) WithCompletionReorder(depth int) Builder {
	b.reorderEnabled = true
	b.reorderDepth = depth
	return b
}

// WithHostRemote sets the port that outgoing flits are sent to.
func (b Builder) WithHostRemote(remote sim.RemotePort) Builder {
	b.hostRemote = remote
	return b
}

// Build creates a host channel with the given name.
func (b Builder) Build(name string) *Comp {
	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.codec = NewCodec(b.encoding, b.segmentsPerFlit)
	c.numLanes = b.numLanes
	c.hostRemote = b.hostRemote
	c.tracker = chanevents.NewTracker()

	if b.reorderEnabled {
		c.reorderEnabled = true
		c.rob = newReorderBuffer(b.reorderDepth)
	}

	b.createPorts(c, name)
	b.createCompletionPath(c, name)

	c.AddMiddleware(&rxMiddleware{Comp: c})
	c.AddMiddleware(&txMiddleware{Comp: c})

	return c
}

func (b Builder) createPorts(c *Comp, name string) {
	c.ReqAPort = sim.NewPort(c, b.portBufSize, b.portBufSize, name+".ReqA")
	c.ReqBPort = sim.NewPort(c, b.portBufSize, b.portBufSize, name+".ReqB")
	c.RspPort = sim.NewPort(c, b.portBufSize, b.portBufSize, name+".Rsp")
	c.HostPort = sim.NewPort(c,
		2*b.numLanes, 2*b.numLanes, name+".Host")

	c.AddPort("ReqA", c.ReqAPort)
	c.AddPort("ReqB", c.ReqBPort)
	c.AddPort("Rsp", c.RspPort)
	c.AddPort("Host", c.HostPort)
}

func (b Builder) createCompletionPath(c *Comp, name string) {
	unitsPerTick := b.numLanes * c.codec.MaxUnitsPerFlit()

	c.rxUnitBuf = sim.NewBuffer(name+".RxUnitBuf", 2*unitsPerTick)
	c.cplOutBuf = sim.NewBuffer(name+".CplOutBuf", 2*unitsPerTick)
	c.cplPipeline = pipelining.MakeBuilder().
		WithPipelineWidth(unitsPerTick).
		WithNumStage(b.numPipelineStages).
		WithCyclePerStage(1).
		WithPostPipelineBuffer(c.cplOutBuf).
		Build(name + ".CplPipeline")
}
