package atomicx

import (
	"runtime"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaddedSizes(t *testing.T) {
	assert.Equal(t, uintptr(CacheLineSize), unsafe.Sizeof(Flag{}))
	assert.Equal(t, uintptr(CacheLineSize), unsafe.Sizeof(Slot{}))
	assert.Equal(t, uintptr(CacheLineSize), unsafe.Sizeof(Pad{}))

	// Neighbouring array elements must never share a line.
	var flags [2]Flag
	a := uintptr(unsafe.Pointer(&flags[0].v))
	b := uintptr(unsafe.Pointer(&flags[1].v))
	assert.GreaterOrEqual(t, b-a, uintptr(CacheLineSize))
}

func TestFlag_LoadStore(t *testing.T) {
	orderings := []Ordering{Relaxed, Acquire, Release, SeqCst}
	for _, o := range orderings {
		t.Run(o.String(), func(t *testing.T) {
			var f Flag
			assert.False(t, f.Load(o))
			f.Store(true, o)
			assert.True(t, f.Load(o))
			f.Store(false, o)
			assert.False(t, f.Load(o))
		})
	}
}

func TestFlag_CompareAndSwap(t *testing.T) {
	orderings := []Ordering{Relaxed, Acquire, Release, SeqCst}
	for _, o := range orderings {
		t.Run(o.String(), func(t *testing.T) {
			var f Flag
			assert.False(t, f.CompareAndSwap(true, false, o), "swap from the wrong value must fail")
			assert.False(t, f.Load(Acquire))
			assert.True(t, f.CompareAndSwap(false, true, o))
			assert.True(t, f.Load(Acquire))
			assert.False(t, f.CompareAndSwap(false, true, o))
			assert.True(t, f.CompareAndSwap(true, false, o))
			assert.False(t, f.Load(Acquire))
		})
	}
}

func TestFlag_RelaxedCompareAndSwapPingPong(t *testing.T) {
	if runtime.GOMAXPROCS(0) < 2 {
		t.Skip("needs GOMAXPROCS >= 2")
	}
	const rounds = 20000
	var f Flag
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			for !f.CompareAndSwap(false, true, Relaxed) {
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			for !f.CompareAndSwap(true, false, Relaxed) {
			}
		}
	}()
	wg.Wait()

	// Every flip was matched by exactly one flip back.
	assert.False(t, f.Load(SeqCst))
}

func TestSlot_LoadStore(t *testing.T) {
	var s Slot
	assert.Equal(t, uint64(0), s.Load(Relaxed))
	s.Store(1<<40+7, Release)
	assert.Equal(t, uint64(1<<40+7), s.Load(Acquire))
	assert.Equal(t, uint64(1<<40+7), s.WaitNonZero(Relaxed))
}

func TestSlot_WaitNonZeroAcrossGoroutines(t *testing.T) {
	if runtime.GOMAXPROCS(0) < 2 {
		t.Skip("needs GOMAXPROCS >= 2")
	}
	var s Slot
	done := make(chan uint64)
	go func() {
		done <- s.WaitNonZero(Acquire)
	}()
	s.Store(42, Release)
	assert.Equal(t, uint64(42), <-done)
}

func TestBarrier_LockStep(t *testing.T) {
	if runtime.GOMAXPROCS(0) < 2 {
		t.Skip("needs GOMAXPROCS >= 2")
	}
	const rounds = 2000
	b := NewBarrier(2)

	// Each party publishes its round before the barrier; after the barrier
	// the peer must have reached at least the same round.
	var progress [2]Slot
	var wg sync.WaitGroup
	var violations [2]int
	for p := 0; p < 2; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			peer := &progress[1-p]
			for r := uint64(1); r <= rounds; r++ {
				progress[p].Store(r, SeqCst)
				b.Wait()
				if peer.Load(SeqCst) < r {
					violations[p]++
				}
				b.Wait()
			}
		}(p)
	}
	wg.Wait()
	require.Zero(t, violations[0])
	require.Zero(t, violations[1])
}

func TestBarrier_SingleParty(t *testing.T) {
	b := NewBarrier(0)
	// Must not spin: a lone party is always the last arrival.
	b.Wait()
	b.Wait()
}

func TestOrderingString(t *testing.T) {
	assert.Equal(t, "relaxed", Relaxed.String())
	assert.Equal(t, "acquire", Acquire.String())
	assert.Equal(t, "release", Release.String())
	assert.Equal(t, "seq-cst", SeqCst.String())
	assert.Equal(t, "unknown", Ordering(99).String())
}

func TestSpinAndOpaque(t *testing.T) {
	Spin(0)
	Spin(1000)
	Opaque(123)
	assert.Equal(t, uint64(123), load64(&sink, SeqCst))
}
