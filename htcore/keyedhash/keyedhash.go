// Package keyedhash provides a hash-flooding-resistant Hasher for
// tables whose keys are attacker-influenced — spec.md §1 names "ACL
// fragments" as one of this dataplane's key domains, and ACL keys are
// commonly derived from packet 5-tuples an adversary controls. An
// unkeyed hash lets such an adversary pick keys that all land in one
// chunk, degrading every operation on that chunk to its full
// linear-probe or overflow-chain length. Keying the hash with a
// per-table secret closes that off.
//
// This is never the default Hasher for any variant — it costs roughly
// an order of magnitude more per call than CRC32 — but it is available
// to opt into for tables that face untrusted input.
package keyedhash

import (
	"crypto/rand"
	"unsafe"

	"golang.org/x/crypto/blake2b"
)

// Hasher hashes a fixed-width key with keyed BLAKE2b, truncated to 32
// bits. The key is generated once per Hasher from crypto/rand so two
// tables constructed in the same process do not share a predictable
// hash, and is never exposed after construction.
type Hasher[K comparable] struct {
	key [16]byte
}

// New generates a fresh random key and returns a ready-to-use Hasher.
func New[K comparable]() (*Hasher[K], error) {
	h := &Hasher[K]{}
	if _, err := rand.Read(h.key[:]); err != nil {
		return nil, err
	}
	return h, nil
}

// Hash implements htcore.Hasher.
func (h *Hasher[K]) Hash(k K) uint32 {
	b := unsafe.Slice((*byte)(unsafe.Pointer(&k)), unsafe.Sizeof(k))
	digest, err := blake2b.New(4, h.key[:])
	if err != nil {
		// Only fails on an invalid key/size combination, both of
		// which are fixed constants above — unreachable in practice.
		panic("keyedhash: invalid blake2b configuration: " + err.Error())
	}
	digest.Write(b)
	sum := digest.Sum(nil)
	return uint32(sum[0])<<24 | uint32(sum[1])<<16 | uint32(sum[2])<<8 | uint32(sum[3])
}
