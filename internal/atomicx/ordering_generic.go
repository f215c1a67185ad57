//go:build (!amd64 && !arm64) || race || purego

package atomicx

import "sync/atomic"

// Sequentially consistent fallback. Stronger than requested, never weaker.

func load32(addr *uint32, _ Ordering) uint32 {
	return atomic.LoadUint32(addr)
}

func store32(addr *uint32, val uint32, _ Ordering) {
	atomic.StoreUint32(addr, val)
}

func load64(addr *uint64, _ Ordering) uint64 {
	return atomic.LoadUint64(addr)
}

func store64(addr *uint64, val uint64, _ Ordering) {
	atomic.StoreUint64(addr, val)
}

func cas32(addr *uint32, old, new uint32, _ Ordering) bool {
	return atomic.CompareAndSwapUint32(addr, old, new)
}
