//go:build amd64 && !race && !purego

package atomicx

import "sync/atomic"

// Implemented in ordering_amd64.s as single MOV instructions.

//go:noescape
func loadUint32(addr *uint32) uint32

//go:noescape
func storeUint32(addr *uint32, val uint32)

//go:noescape
func loadUint64(addr *uint64) uint64

//go:noescape
func storeUint64(addr *uint64, val uint64)

func load32(addr *uint32, o Ordering) uint32 {
	return loadUint32(addr)
}

func store32(addr *uint32, val uint32, o Ordering) {
	if o == SeqCst {
		atomic.StoreUint32(addr, val)
		return
	}
	storeUint32(addr, val)
}

func load64(addr *uint64, o Ordering) uint64 {
	return loadUint64(addr)
}

func store64(addr *uint64, val uint64, o Ordering) {
	if o == SeqCst {
		atomic.StoreUint64(addr, val)
		return
	}
	storeUint64(addr, val)
}

func cas32(addr *uint32, old, new uint32, _ Ordering) bool {
	return atomic.CompareAndSwapUint32(addr, old, new)
}
