// Package modlock implements MOD-LOCK: a modulo-addressed, per-chunk
// spinlocked table with no overflow chain — a full chunk simply
// refuses further inserts by linear-probing to FULL. It ships both a
// statically-sized flavor (capacity fixed at construction) and a
// dynamic flavor whose backing chunk array can be repointed at runtime
// through an Updater, for tables that must live in externally
// provisioned (shared, huge-page) memory.
package modlock

import "github.com/yanet-dataplane/hashtable/htcore/spinlock"

const maxPairsPerChunk = 32

type pair[K comparable, V any] struct {
	key   K
	value V
}

// chunk carries a non-recursive lock — MOD-LOCK's iteration never
// calls back into the table while holding it, unlike CHAIN-LOCK's
// Sweep, so there is no reentrancy discipline to design around here.
// generation increments on every mutation, letting an incremental
// sweep skip chunks unchanged since a previously observed generation.
type chunk[K comparable, V any] struct {
	lock       spinlock.Lock
	validMask  uint32
	generation uint64
	pairs      [maxPairsPerChunk]pair[K, V]
}
