package main

import (
	"fmt"
	"log"
	"os"

	"github.com/michelleyho/ofs-platform-afu-bbb/csr"
	"github.com/michelleyho/ofs-platform-afu-bbb/engines/dma"
	"github.com/michelleyho/ofs-platform-afu-bbb/hostchan"
	"github.com/michelleyho/ofs-platform-afu-bbb/hostmem"
	"github.com/michelleyho/ofs-platform-afu-bbb/sim"
	"github.com/michelleyho/ofs-platform-afu-bbb/sim/directconnection"
	"github.com/michelleyho/ofs-platform-afu-bbb/simulation"
)

const regionStride = 0x10000

type platform struct {
	sim     *simulation.Simulation
	storage *hostmem.Storage
	channel *hostchan.Comp
	ctrl    *csr.Comp
	copiers []*dma.Comp
	agent   *ctrlAgent
}

type trafficRow struct {
	TotalRequested uint64
	TotalReturned  uint64
}

type cycleCounterRow struct {
	ControlCycles uint64
	CounterCycles uint64
}

type engineRow struct {
	Engine    string
	Issued    uint64
	Completed uint64
}

func run() {
	output := flags.output
	if output == "" {
		output = os.Getenv("OFSPLATSIM_OUTPUT")
	}

	builder := simulation.MakeBuilder().
		WithOutputFileName(output)
	if flags.monitorOff {
		builder = builder.WithoutMonitoring()
	} else if flags.monitorPort > 0 {
		builder = builder.WithMonitorPort(flags.monitorPort)
	}

	p := buildPlatform(builder.Build())
	defer p.sim.Terminate()

	p.loadSourceData()
	p.programEngines()

	if err := p.sim.GetEngine().Run(); err != nil {
		log.Panic(err)
	}

	p.verifyCopies()
	p.report()
}

func buildPlatform(s *simulation.Simulation) *platform {
	engine := s.GetEngine()
	encoding := parseEncoding(flags.encoding)

	p := &platform{
		sim:     s,
		storage: hostmem.NewStorage(),
	}

	mem := hostmem.MakeBuilder().
		WithEngine(engine).
		WithEncoding(encoding).
		WithSegmentsPerFlit(flags.segments).
		WithLatency(flags.memLatency).
		WithMaxJitter(flags.memJitter).
		WithStorage(p.storage).
		Build("HostMem")

	chanBuilder := hostchan.MakeBuilder().
		WithEngine(engine).
		WithEncoding(encoding).
		WithNumLanes(flags.lanes).
		WithSegmentsPerFlit(flags.segments).
		WithNumPipelineStages(flags.stages).
		WithHostRemote(mem.TopPort.AsRemote())
	if flags.reorder > 0 {
		chanBuilder = chanBuilder.WithCompletionReorder(flags.reorder)
	}
	p.channel = chanBuilder.Build("Chan")

	csrEngines := make([]csr.Engine, 0, flags.numEngines)
	for i := 0; i < flags.numEngines; i++ {
		copier := dma.MakeBuilder().
			WithEngine(engine).
			WithChannelRemotes(
				p.channel.ReqAPort.AsRemote(),
				p.channel.ReqBPort.AsRemote()).
			Build(fmt.Sprintf("Copier%02d", i))

		p.copiers = append(p.copiers, copier)
		csrEngines = append(csrEngines, copier)
	}

	p.ctrl = csr.MakeBuilder().
		WithEngine(engine).
		WithComputeEngines(csrEngines).
		Build("Ctrl")

	p.agent = newCtrlAgent(engine, p.ctrl.CtrlPort.AsRemote())

	p.connect(engine, mem)
	p.register(mem)

	return p
}

func (p *platform) connect(engine sim.Engine, mem *hostmem.Comp) {
	conn := directconnection.MakeBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("Conn")

	conn.PlugIn(p.agent.CtrlPort)
	conn.PlugIn(p.ctrl.CtrlPort)
	conn.PlugIn(p.channel.ReqAPort)
	conn.PlugIn(p.channel.ReqBPort)
	conn.PlugIn(p.channel.RspPort)
	conn.PlugIn(p.channel.HostPort)
	conn.PlugIn(mem.TopPort)
	for _, c := range p.copiers {
		conn.PlugIn(c.MemPort)
	}

	p.sim.RegisterComponent(conn)
}

func (p *platform) register(mem *hostmem.Comp) {
	p.sim.RegisterComponent(p.agent)
	p.sim.RegisterComponent(p.ctrl)
	p.sim.RegisterComponent(p.ctrl.CounterDomain())
	p.sim.RegisterComponent(p.channel)
	p.sim.RegisterComponent(mem)
	for _, c := range p.copiers {
		p.sim.RegisterComponent(c)
	}

	if monitor := p.sim.GetMonitor(); monitor != nil {
		monitor.RegisterTrafficSource("hostchan", func() map[string]uint64 {
			t := p.channel.Tracker()
			return map[string]uint64{
				"total_requested": t.TotalRequested(),
				"total_returned":  t.TotalReturned(),
				"outstanding":     t.Outstanding(),
			}
		})
	}
}

func srcRegion(i int) uint64 { return uint64(i) * regionStride }
func dstRegion(i int) uint64 { return uint64(i)*regionStride + regionStride/2 }

func (p *platform) loadSourceData() {
	for i := range p.copiers {
		data := make([]uint64, flags.countWords)
		for w := range data {
			data[w] = srcRegion(i) + uint64(w)
		}
		p.storage.Write(srcRegion(i), data)
	}
}

// programEngines queues the register accesses that configure every copy
// engine and then start them all with one enable command.
func (p *platform) programEngines() {
	for i := range p.copiers {
		base := uint64(csr.EngineBase + i*csr.BlockSize)
		p.agent.write(base+dma.RegSrcAddr, srcRegion(i))
		p.agent.write(base+dma.RegDstAddr, dstRegion(i))
		p.agent.write(base+dma.RegCount, flags.countWords)
		p.agent.write(base+dma.RegBurst, flags.burstWords)
	}

	p.agent.read(csr.RegDFH)

	mask := uint64(1)<<len(p.copiers) - 1
	p.agent.write(csr.RegCmd, csr.MakeCommand(csr.CmdEnable, mask))

	p.agent.TickLater()
}

func (p *platform) verifyCopies() {
	for i := range p.copiers {
		want := p.storage.Read(srcRegion(i), int(flags.countWords))
		got := p.storage.Read(dstRegion(i), int(flags.countWords))

		for w := range want {
			if got[w] != want[w] {
				log.Panicf("engine %d: word %d is %#x, want %#x",
					i, w, got[w], want[w])
			}
		}
	}
}

func (p *platform) report() {
	recorder := p.sim.GetDataRecorder()
	tracker := p.channel.Tracker()

	recorder.CreateTable("traffic", trafficRow{})
	recorder.InsertData("traffic", trafficRow{
		TotalRequested: tracker.TotalRequested(),
		TotalReturned:  tracker.TotalReturned(),
	})

	recorder.CreateTable("cycle_counters", cycleCounterRow{})
	recorder.InsertData("cycle_counters", cycleCounterRow{
		ControlCycles: p.ctrl.Cycles(),
		CounterCycles: p.ctrl.CounterDomain().Cycles(),
	})

	recorder.CreateTable("engines", engineRow{})
	for _, c := range p.copiers {
		recorder.InsertData("engines", engineRow{
			Engine:    c.Name(),
			Issued:    c.RegRead(dma.RegIssued),
			Completed: c.RegRead(dma.RegCompleted),
		})
	}

	if len(p.agent.rsps) > 0 {
		fmt.Printf("device feature header: %#x\n", p.agent.rsps[0].Data)
	}
	fmt.Printf("simulated time: %.9fs\n",
		float64(p.sim.GetEngine().CurrentTime()))
	fmt.Printf("words requested: %d, words returned: %d\n",
		tracker.TotalRequested(), tracker.TotalReturned())
	fmt.Printf("control cycles active: %d, counter-domain cycles: %d\n",
		p.ctrl.Cycles(), p.ctrl.CounterDomain().Cycles())
}
