package protocol

import (
	"github.com/wesleyorama2/corelat/internal/affinity"
	"github.com/wesleyorama2/corelat/internal/atomicx"
	"github.com/wesleyorama2/corelat/internal/clock"
)

const casTitle = "CAS latency on a single shared cache line"

const (
	casPing = false
	casPong = true
)

// CAS bounces one flag between the two threads with compare-and-swap. Both
// sides retry the swap until it succeeds, the access pattern of a contended
// spinlock.
type CAS struct {
	pin affinity.Pinner
}

// NewCAS returns the compare-and-swap ping-pong protocol.
func NewCAS(opts Options) *CAS {
	return &CAS{pin: opts.withDefaults().Pinner}
}

func (*CAS) Name() string    { return "cas" }
func (*CAS) Title() string   { return casTitle }
func (*CAS) Unit() Unit      { return Nanoseconds }
func (*CAS) Symmetric() bool { return true }

type casState struct {
	_       atomicx.Pad
	flag    atomicx.Flag
	barrier *atomicx.Barrier
}

// Run implements Protocol.
func (c *CAS) Run(pair Pair, clk *clock.Clock, iterations, samples uint32) []float64 {
	st := &casState{barrier: atomicx.NewBarrier(2)}
	roundTrips := uint64(iterations) * uint64(samples)

	pong := func() {
		st.barrier.Wait()
		for i := uint64(0); i < roundTrips; i++ {
			for !st.flag.CompareAndSwap(casPing, casPong, atomicx.Relaxed) {
			}
		}
	}

	ping := func() []float64 {
		results := make([]float64, 0, samples)
		st.barrier.Wait()
		for s := uint32(0); s < samples; s++ {
			start := clk.Now()
			for i := uint32(0); i < iterations; i++ {
				for !st.flag.CompareAndSwap(casPong, casPing, atomicx.Relaxed) {
				}
			}
			end := clk.Now()
			results = append(results, perRoundTrip(clk, start, end, iterations))
		}
		return results
	}

	return runPair(c.Name(), c.pin, pair, ping, pong)
}
