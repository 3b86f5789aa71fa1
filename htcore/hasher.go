package htcore

import (
	"hash/crc32"
	"unsafe"
)

// Hasher produces a 32-bit hash for a fixed-width key. Implementations
// must be deterministic and avalanche well over the low bits, since
// those bits select the primary chunk. Collisions are handled by
// storing full keys and comparing on lookup — a Hasher never needs to
// be collision-free, only well-distributed.
type Hasher[K comparable] interface {
	Hash(k K) uint32
}

// keyBytes views a fixed-width, trivially-copyable key as its raw
// memory bytes, exactly as the reference C++ template hashes
// sizeof(K) bytes of the key. K containing a slice, map, or pointer
// defeats this — the same "trivially copyable" precondition the
// original imposes via a type parameter with no runtime check.
func keyBytes[K comparable](k *K) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(k)), unsafe.Sizeof(*k))
}

// crc32Table is the Castagnoli polynomial table. On amd64/arm64 the Go
// runtime detects SSE4.2/ARMv8 CRC32 support and crc32.Update dispatches
// to the hardware instruction automatically — this is what makes CRC32
// the right default rather than a stdlib shortcut: spec.md calls out
// "CRC32-based ... hardware-accelerated where available" by name.
var crc32Table = crc32.MakeTable(crc32.Castagnoli)

// CRC32Hasher is the default Hasher for every variant's zero-value
// construction path.
type CRC32Hasher[K comparable] struct{}

// Hash implements Hasher.
func (CRC32Hasher[K]) Hash(k K) uint32 {
	return crc32.Update(0, crc32Table, keyBytes(&k))
}
