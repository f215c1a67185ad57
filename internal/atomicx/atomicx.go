// Package atomicx provides cache-line padded atomic cells whose loads and
// stores take an explicit memory ordering, plus the spin primitives the
// latency protocols are built from.
//
// Go's sync/atomic only offers sequentially consistent operations. The
// protocols measure the cost of specific orderings, so on amd64 and arm64
// loads and stores are implemented in assembly with the requested ordering:
//
//   - amd64: plain MOV for every ordering (x86-TSO loads are acquire and
//     stores are release already).
//   - arm64: LDAR/STLR for Acquire/Release, plain loads and stores for Relaxed.
//     A Relaxed compare-and-swap is an LDXRW/STXRW loop with no
//     acquire or release semantics.
//
// Other architectures, and any build with the race detector, fall back to
// sync/atomic so every synchronization edge stays visible to the tooling.
// On amd64 every compare-and-swap is LOCK CMPXCHG whatever the ordering.
package atomicx

// CacheLineSize is the padding unit for shared fields.
// 64 bytes is standard for x86-64, 128 covers Apple Silicon and the
// adjacent-line prefetcher on Intel parts.
const CacheLineSize = 128

// Pad is one cache line of padding. Place it before the first padded field
// of a shared struct so nothing allocated in front of it shares the line.
type Pad [CacheLineSize]byte

// Ordering is the memory ordering requested for a load or a store.
type Ordering uint8

const (
	Relaxed Ordering = iota
	Acquire
	Release
	SeqCst
)

func (o Ordering) String() string {
	switch o {
	case Relaxed:
		return "relaxed"
	case Acquire:
		return "acquire"
	case Release:
		return "release"
	case SeqCst:
		return "seq-cst"
	default:
		return "unknown"
	}
}

// Flag is a boolean stored alone on its cache line.
type Flag struct {
	v uint32
	_ [CacheLineSize - 4]byte
}

// Load reads the flag with the given ordering.
func (f *Flag) Load(o Ordering) bool {
	return load32(&f.v, o) != 0
}

// Store writes the flag with the given ordering.
func (f *Flag) Store(val bool, o Ordering) {
	store32(&f.v, boolToUint32(val), o)
}

// CompareAndSwap flips the flag from old to new with the given ordering and
// reports whether it did.
func (f *Flag) CompareAndSwap(old, new bool, o Ordering) bool {
	return cas32(&f.v, boolToUint32(old), boolToUint32(new), o)
}

// Slot is a 64-bit value stored alone on its cache line.
type Slot struct {
	v uint64
	_ [CacheLineSize - 8]byte
}

// Load reads the slot with the given ordering.
func (s *Slot) Load(o Ordering) uint64 {
	return load64(&s.v, o)
}

// Store writes the slot with the given ordering.
func (s *Slot) Store(val uint64, o Ordering) {
	store64(&s.v, val, o)
}

// WaitNonZero spins until the slot holds a non-zero value and returns it.
func (s *Slot) WaitNonZero(o Ordering) uint64 {
	for {
		if v := load64(&s.v, o); v != 0 {
			return v
		}
	}
}

var (
	sink       uint64
	spinTarget uint32
)

// Opaque publishes v to a package-level sink so the computation that
// produced it cannot be elided by the compiler.
func Opaque(v uint64) {
	store64(&sink, v, Relaxed)
}

// Spin busy-waits for n iterations of an opaque load.
func Spin(n int) {
	for i := 0; i < n; i++ {
		load32(&spinTarget, Relaxed)
	}
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
