//go:build arm64 && !race && !purego

package atomicx

import "sync/atomic"

// Implemented in ordering_arm64.s.

//go:noescape
func loadAcquireUint32(addr *uint32) uint32

//go:noescape
func loadRelaxedUint32(addr *uint32) uint32

//go:noescape
func storeReleaseUint32(addr *uint32, val uint32)

//go:noescape
func storeRelaxedUint32(addr *uint32, val uint32)

//go:noescape
func casRelaxedUint32(addr *uint32, old, new uint32) bool

//go:noescape
func loadAcquireUint64(addr *uint64) uint64

//go:noescape
func loadRelaxedUint64(addr *uint64) uint64

//go:noescape
func storeReleaseUint64(addr *uint64, val uint64)

//go:noescape
func storeRelaxedUint64(addr *uint64, val uint64)

func load32(addr *uint32, o Ordering) uint32 {
	switch o {
	case Relaxed:
		return loadRelaxedUint32(addr)
	case SeqCst:
		return atomic.LoadUint32(addr)
	default:
		return loadAcquireUint32(addr)
	}
}

func store32(addr *uint32, val uint32, o Ordering) {
	switch o {
	case Relaxed:
		storeRelaxedUint32(addr, val)
	case SeqCst:
		atomic.StoreUint32(addr, val)
	default:
		storeReleaseUint32(addr, val)
	}
}

func load64(addr *uint64, o Ordering) uint64 {
	switch o {
	case Relaxed:
		return loadRelaxedUint64(addr)
	case SeqCst:
		return atomic.LoadUint64(addr)
	default:
		return loadAcquireUint64(addr)
	}
}

func store64(addr *uint64, val uint64, o Ordering) {
	switch o {
	case Relaxed:
		storeRelaxedUint64(addr, val)
	case SeqCst:
		atomic.StoreUint64(addr, val)
	default:
		storeReleaseUint64(addr, val)
	}
}

func cas32(addr *uint32, old, new uint32, o Ordering) bool {
	if o == Relaxed {
		return casRelaxedUint32(addr, old, new)
	}
	return atomic.CompareAndSwapUint32(addr, old, new)
}
