package atomicx

import "sync/atomic"

// Barrier is a reusable spinning rendezvous point.
//
// Waiters never park: the protocols need both threads running on their
// cores when the barrier opens, so the last arrival releases the others by
// bumping a generation counter they are spinning on.
type Barrier struct {
	_          Pad
	arrived    atomic.Uint32
	_          [CacheLineSize - 4]byte
	generation atomic.Uint32
	_          [CacheLineSize - 4]byte
	parties    uint32
}

// NewBarrier returns a barrier for the given number of parties.
func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		parties = 1
	}
	return &Barrier{parties: uint32(parties)}
}

// Wait blocks, spinning, until all parties have called Wait.
func (b *Barrier) Wait() {
	gen := b.generation.Load()
	if b.arrived.Add(1) == b.parties {
		b.arrived.Store(0)
		b.generation.Add(1)
		return
	}
	for b.generation.Load() == gen {
	}
}
