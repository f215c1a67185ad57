package protocol

import (
	"github.com/wesleyorama2/corelat/internal/affinity"
	"github.com/wesleyorama2/corelat/internal/atomicx"
	"github.com/wesleyorama2/corelat/internal/clock"
)

const readWriteTitle = "Single-writer single-reader latency on two shared cache lines"

// ReadWrite gives each thread its own cache line to write and makes it read
// the other's. Every pass observes the peer's last value with an acquire
// load before publishing its own with a release store, chaining the two
// threads causally.
type ReadWrite struct {
	pin affinity.Pinner
}

// NewReadWrite returns the causal read/write protocol.
func NewReadWrite(opts Options) *ReadWrite {
	return &ReadWrite{pin: opts.withDefaults().Pinner}
}

func (*ReadWrite) Name() string    { return "read-write" }
func (*ReadWrite) Title() string   { return readWriteTitle }
func (*ReadWrite) Unit() Unit      { return Nanoseconds }
func (*ReadWrite) Symmetric() bool { return true }

type readWriteState struct {
	_           atomicx.Pad
	ownedByPing atomicx.Flag
	ownedByPong atomicx.Flag
	barrier     *atomicx.Barrier
}

// Run implements Protocol.
func (rw *ReadWrite) Run(pair Pair, clk *clock.Clock, iterations, samples uint32) []float64 {
	st := &readWriteState{barrier: atomicx.NewBarrier(2)}
	passes := uint64(iterations) * uint64(samples)

	pong := func() {
		st.barrier.Wait()
		v := false
		for i := uint64(0); i < passes; i++ {
			for st.ownedByPing.Load(atomicx.Acquire) != v {
			}
			st.ownedByPong.Store(!v, atomicx.Release)
			v = !v
		}
	}

	ping := func() []float64 {
		results := make([]float64, 0, samples)
		st.barrier.Wait()
		v := true
		for s := uint32(0); s < samples; s++ {
			start := clk.Now()
			for i := uint32(0); i < iterations; i++ {
				for st.ownedByPong.Load(atomicx.Acquire) != v {
				}
				st.ownedByPing.Store(v, atomicx.Release)
				v = !v
			}
			end := clk.Now()
			results = append(results, perRoundTrip(clk, start, end, iterations))
		}
		return results
	}

	return runPair(rw.Name(), rw.pin, pair, ping, pong)
}
