// Package xxhash32 provides the CityHash-class alternate hasher spec.md
// §4.1 names generically ("Alternatives (e.g., CityHash) are injected
// by type parameter"). It wraps github.com/cespare/xxhash/v2, the
// 64-bit xxHash implementation used elsewhere across this dataplane's
// sibling services, truncated to the 32 bits the table layout requires.
package xxhash32

import (
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Hasher hashes a fixed-width key with xxHash64, truncated to its low
// 32 bits. Truncation is safe here: xxHash64 avalanches every output
// bit, so the low half carries the same distribution quality the
// primary-chunk selector needs.
type Hasher[K comparable] struct{}

// Hash implements htcore.Hasher.
func (Hasher[K]) Hash(k K) uint32 {
	b := unsafe.Slice((*byte)(unsafe.Pointer(&k)), unsafe.Sizeof(k))
	return uint32(xxhash.Sum64(b))
}
