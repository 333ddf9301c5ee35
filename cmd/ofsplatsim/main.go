// Package main provides the ofsplatsim command. It assembles a platform out
// of host memory, a host channel, a control plane, and a number of copy
// engines, drives one copy through the control plane, and records the
// results.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/michelleyho/ofs-platform-afu-bbb/hostchan"
)

var rootCmd = &cobra.Command{
	Use:   "ofsplatsim",
	Short: "ofsplatsim simulates the host interface of an OFS platform.",
	Long: `ofsplatsim builds a discrete-tick model of the boundary between ` +
		`the PCIe host transport and the compute engines of an OFS ` +
		`platform: the protocol-normalizing host channel, the CSR control ` +
		`plane, and a set of copy engines. It runs one copy on every ` +
		`engine and reports the traffic and cycle counters.`,
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

var flags = struct {
	encoding    string
	lanes       int
	segments    int
	stages      int
	reorder     int
	numEngines  int
	countWords  uint64
	burstWords  uint64
	memLatency  int
	memJitter   int
	monitorOff  bool
	monitorPort int
	output      string
}{}

func init() {
	f := rootCmd.Flags()

	f.StringVar(&flags.encoding, "encoding", "packed",
		"wire encoding of the host channel, packed or perlane")
	f.IntVar(&flags.lanes, "lanes", 1,
		"number of raw flits the channel takes in per tick")
	f.IntVar(&flags.segments, "segments", 4,
		"transfer units a packed flit can start")
	f.IntVar(&flags.stages, "stages", 2,
		"registering stages on the completion path")
	f.IntVar(&flags.reorder, "reorder", 64,
		"completion reorder buffer depth, 0 to disable reordering")
	f.IntVar(&flags.numEngines, "engines", 1,
		"number of copy engines")
	f.Uint64Var(&flags.countWords, "count", 4096,
		"words each engine copies")
	f.Uint64Var(&flags.burstWords, "burst", 8,
		"words per read burst")
	f.IntVar(&flags.memLatency, "latency", 100,
		"host memory access latency in cycles")
	f.IntVar(&flags.memJitter, "jitter", 16,
		"largest extra read latency in cycles")
	f.BoolVar(&flags.monitorOff, "no-monitor", false,
		"disable the monitoring server")
	f.IntVar(&flags.monitorPort, "monitor-port", 0,
		"port number of the monitoring server, 0 for a random port")
	f.StringVar(&flags.output, "output", "",
		"output database file name")
}

func parseEncoding(s string) hostchan.Encoding {
	switch s {
	case "packed":
		return hostchan.EncodingPacked
	case "perlane":
		return hostchan.EncodingPerLane
	}

	panic("unknown encoding " + s)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("cannot load .env file: %s", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
