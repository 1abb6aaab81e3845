// Package shm holds the primitives shared by the host and the device side of
// a memory object: word-aligned backing allocation and atomic access to the
// 64-bit words used as fences and timestamps.
//
// Atomic accessors use host byte order. Only little-endian hosts are
// supported, which matches the device wire format.
package shm

import (
	"sync/atomic"
	"unsafe"
)

// Alloc returns n zeroed bytes whose first byte is 8-byte aligned.
func Alloc(n uint64) []byte {
	if n == 0 {
		return nil
	}
	words := make([]uint64, (n+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), n)
}

// Aligned reports whether the base of b is 8-byte aligned.
func Aligned(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&b[0]))%8 == 0
}

func word(b []byte, off uint64) *uint64 {
	if off%8 != 0 {
		panic("shm: misaligned 64-bit access")
	}
	if off > uint64(len(b)) || uint64(len(b))-off < 8 {
		panic("shm: 64-bit access out of range")
	}
	return (*uint64)(unsafe.Pointer(&b[off]))
}

// LoadUint64 atomically loads the word at off. off must be 8-byte aligned
// and b must come from Alloc or satisfy Aligned.
func LoadUint64(b []byte, off uint64) uint64 {
	return atomic.LoadUint64(word(b, off))
}

// StoreUint64 atomically stores v at off.
func StoreUint64(b []byte, off uint64, v uint64) {
	atomic.StoreUint64(word(b, off), v)
}
