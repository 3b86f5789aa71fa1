// Package murmur32 provides a second fast non-cryptographic Hasher
// alternative, wrapping github.com/spaolacci/murmur3's 32-bit
// finalizer. Murmur3 and xxHash have different worst-case key patterns
// they degrade on; keeping both as injectable Hashers lets an operator
// swap a dataplane table's hash without touching its call sites if one
// pattern turns out to cluster badly in production traffic.
package murmur32

import (
	"unsafe"

	"github.com/spaolacci/murmur3"
)

// Hasher hashes a fixed-width key with the 32-bit Murmur3 finalizer.
type Hasher[K comparable] struct{}

// Hash implements htcore.Hasher.
func (Hasher[K]) Hash(k K) uint32 {
	b := unsafe.Slice((*byte)(unsafe.Pointer(&k)), unsafe.Sizeof(k))
	return murmur3.Sum32(b)
}
