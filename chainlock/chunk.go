// Package chainlock implements CHAIN-LOCK: the same chunk-with-overflow
// layout as package chain, with a spinlock embedded in every primary
// chunk (protecting that chunk and its whole extended chain) plus a
// single spinlock guarding the shared extended-chunk pool's bump/free
// bookkeeping. Lock order is always chunk-then-pool, never reversed.
package chainlock

import "github.com/yanet-dataplane/hashtable/htcore/spinlock"

const maxPairsPerChunk = 16

const maxPairsPerExtendedChunk = 4

type pair[K comparable, V any] struct {
	key   K
	value V
}

// primaryChunk carries its own lock, unlike package chain's, since
// CHAIN-LOCK is safe for concurrent use across goroutines without any
// caller-side synchronization.
type primaryChunk[K comparable, V any] struct {
	lock         spinlock.Lock
	validMask    uint32
	nextExtended uint32
	pairs        [maxPairsPerChunk]pair[K, V]
}

// extendedChunk carries no lock of its own — it is only ever reachable
// by walking from a primary chunk, and the primary chunk's lock covers
// its whole chain, extended chunks included.
type extendedChunk[K comparable, V any] struct {
	nextExtended uint32
	keyValids    uint8
	pairs        [maxPairsPerExtendedChunk]pair[K, V]
}
