package protocol

import (
	"time"

	"github.com/wesleyorama2/corelat/internal/affinity"
	"github.com/wesleyorama2/corelat/internal/atomicx"
	"github.com/wesleyorama2/corelat/internal/clock"
)

const msgPassingTitle = "Message passing. One writer and one reader on many cache line"

// MsgPassing measures one-way latency. The sender timestamps each message
// into its own cache line; the receiver spins on the line and charges the
// difference between its own clock and the stamped value. Both sides read
// their own clock only, relative to one reference tick taken before the
// threads start.
type MsgPassing struct {
	pin        affinity.Pinner
	delaySpins int
}

// NewMsgPassing returns the one-way message passing protocol.
func NewMsgPassing(opts Options) *MsgPassing {
	opts = opts.withDefaults()
	return &MsgPassing{pin: opts.Pinner, delaySpins: opts.MsgDelaySpins}
}

func (*MsgPassing) Name() string    { return "msg-passing" }
func (*MsgPassing) Title() string   { return msgPassingTitle }
func (*MsgPassing) Unit() Unit      { return Nanoseconds }
func (*MsgPassing) Symmetric() bool { return false }

type msgPassingState struct {
	barrier *atomicx.Barrier
	// Zero means empty. The sender never stores zero.
	slots []atomicx.Slot
}

func newMsgPassingState(messages uint32) *msgPassingState {
	// The extra leading slot keeps the first message off whatever line
	// precedes the allocation.
	slots := make([]atomicx.Slot, int(messages)+1)
	return &msgPassingState{
		barrier: atomicx.NewBarrier(2),
		slots:   slots[1:],
	}
}

// Run implements Protocol. Pair.First receives, Pair.Second sends.
func (m *MsgPassing) Run(pair Pair, clk *clock.Clock, iterations, samples uint32) []float64 {
	// The receiver reads the clock once per message.
	overhead := clock.ReadOverhead(clk, iterations)

	st := newMsgPassingState(iterations)
	ref := clk.Now()

	receiver := func() []float64 {
		results := make([]float64, 0, samples)
		st.barrier.Wait()
		for s := uint32(0); s < samples; s++ {
			var sum clock.Tick
			st.barrier.Wait()
			for i := range st.slots {
				// Compensated by overhead below.
				sent := clock.Tick(st.slots[i].WaitNonZero(atomicx.Relaxed))
				received := clk.Now().Since(ref)
				sum += received.Since(sent)
			}
			st.barrier.Wait()
			results = append(results, correctedLatency(clk.Delta(0, sum), overhead, iterations))
		}
		return results
	}

	sender := func() {
		st.barrier.Wait()
		for s := uint32(0); s < samples; s++ {
			st.barrier.Wait()
			for i := range st.slots {
				// Let the receiver get back to spinning before the next message.
				atomicx.Spin(m.delaySpins)
				sent := uint64(clk.Now().Since(ref))
				if sent == 0 {
					sent = 1
				}
				st.slots[i].Store(sent, atomicx.Relaxed)
			}
			st.barrier.Wait()
			for i := range st.slots {
				st.slots[i].Store(0, atomicx.Relaxed)
			}
		}
	}

	return runPair(m.Name(), m.pin, pair, receiver, sender)
}

// correctedLatency removes the clock-read overhead from the summed latency
// of n messages, clamping at zero, and returns the mean per message in ns.
func correctedLatency(sum, overhead time.Duration, n uint32) float64 {
	total := sum - overhead
	if total < 0 {
		total = 0
	}
	if n == 0 {
		return 0
	}
	return float64(total.Nanoseconds()) / float64(n)
}
