// Package protocol implements the inter-core synchronization protocols.
//
// Every protocol runs exactly two OS threads for the duration of one Run
// call, each pinned to one side of a Pair. Both threads meet at a spinning
// barrier before any timed work starts, and Run returns only after both have
// finished. All shared state is allocated per call, padded to cache lines,
// and dropped when Run returns.
package protocol

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wesleyorama2/corelat/internal/affinity"
	"github.com/wesleyorama2/corelat/internal/clock"
)

// Pair is an ordered pair of hardware thread ids. First runs the timed side
// of the protocol (ping, receiver or consumer), Second runs its peer.
type Pair struct {
	First  int
	Second int
}

func (p Pair) String() string {
	return fmt.Sprintf("(%d,%d)", p.First, p.Second)
}

// Unit is the unit a protocol's samples are expressed in.
type Unit string

const (
	Nanoseconds        Unit = "ns"
	GigabytesPerSecond Unit = "GB/s"
)

// Quantity is what the samples measure, for report labels.
func (u Unit) Quantity() string {
	if u == GigabytesPerSecond {
		return "throughput"
	}
	return "latency"
}

// Protocol is one benchmark kind.
type Protocol interface {
	// Name is the short registry name, e.g. "cas".
	Name() string
	// Title is a one-line description for headings.
	Title() string
	Unit() Unit
	// Symmetric reports whether running (a,b) is equivalent to (b,a).
	Symmetric() bool
	// Run executes the protocol on pair and returns exactly samples values.
	// It blocks until both threads have joined and never times out: a
	// handshake that cannot complete spins forever.
	Run(pair Pair, clk *clock.Clock, iterations, samples uint32) []float64
}

// Options tunes protocol construction.
type Options struct {
	// Pinner binds each participant to its hardware thread.
	Pinner affinity.Pinner
	// MsgDelaySpins is the sender's busy delay before each message.
	MsgDelaySpins int
	// MemSize is the total bytes streamed per round trip.
	MemSize int
	// MemChunks is the number of page-aligned chunks MemSize is split into.
	MemChunks int
}

const (
	DefaultMsgDelaySpins = 10000
	DefaultMemSize       = 256 * 1024
	DefaultMemChunks     = 4
)

// DefaultOptions returns the options used by the command line defaults.
func DefaultOptions() Options {
	return Options{
		Pinner:        affinity.Default,
		MsgDelaySpins: DefaultMsgDelaySpins,
		MemSize:       DefaultMemSize,
		MemChunks:     DefaultMemChunks,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Pinner == nil {
		o.Pinner = d.Pinner
	}
	if o.MsgDelaySpins < 0 {
		o.MsgDelaySpins = 0
	}
	if o.MemSize <= 0 {
		o.MemSize = d.MemSize
	}
	if o.MemChunks <= 0 {
		o.MemChunks = d.MemChunks
	}
	return o
}

// runPair starts the two participants on their own pinned OS threads and
// waits for both. The timed side's samples are returned.
func runPair(name string, pin affinity.Pinner, pair Pair, timed func() []float64, peer func()) []float64 {
	log := logrus.WithFields(logrus.Fields{"protocol": name, "pair": pair.String()})
	log.Debug("protocol run started")

	var (
		wg      sync.WaitGroup
		results []float64
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		pin.Pin(pair.Second)
		peer()
	}()
	go func() {
		defer wg.Done()
		pin.Pin(pair.First)
		results = timed()
	}()
	wg.Wait()

	log.WithField("samples", len(results)).Debug("protocol run finished")
	return results
}

// perRoundTrip converts the span of n round trips into one-way latency.
func perRoundTrip(clk *clock.Clock, start, end clock.Tick, n uint32) float64 {
	return float64(clk.Delta(start, end).Nanoseconds()) / float64(n) / 2
}
