// Package chain implements CHAIN — the fastest, externally-synchronized
// chain-with-overflow hashtable variant. It provides no internal
// locking whatsoever; concurrent use requires the caller to serialize
// access (or restrict the table to a single thread), in exchange for
// the lowest possible per-operation cost on the hot path.
package chain

import (
	"github.com/yanet-dataplane/hashtable/htcore"
	"github.com/yanet-dataplane/hashtable/sizeplan"
)

// Config describes a CHAIN table's fixed shape at construction time.
type Config[K comparable] struct {
	// N is the number of primary chunks. Power-of-two is preferred
	// (enables hash & (N-1) instead of hash % N) but not required.
	N uint32
	// Extended is the number of extended chunks available in the
	// overflow pool. 0 disables chaining entirely — the first
	// overflowing insert into any chunk then reports ErrFull.
	Extended uint32
	// PairsPerChunk must be 1, 4, 8, or 16.
	PairsPerChunk uint32
	// Hasher defaults to htcore.CRC32Hasher[K] when nil.
	Hasher htcore.Hasher[K]
}

// Table is a CHAIN hashtable mapping K to V.
type Table[K comparable, V any] struct {
	chunks        []primaryChunk[K, V]
	pool          extendedPool[K, V]
	stats         htcore.Stats
	hasher        htcore.Hasher[K]
	pairsPerChunk uint32
}

// New constructs a Table per cfg. Panics if PairsPerChunk is out of
// the 1/4/8/16 enumeration or exceeds the fixed embedded array size —
// this is a configuration error, not a runtime condition any caller
// could recover from mid-operation.
func New[K comparable, V any](cfg Config[K]) *Table[K, V] {
	if cfg.PairsPerChunk == 0 || cfg.PairsPerChunk > maxPairsPerChunk {
		panic("chain: PairsPerChunk must be in (0, 16]")
	}
	switch cfg.PairsPerChunk {
	case 1, 4, 8, 16:
	default:
		panic("chain: PairsPerChunk must be 1, 4, 8, or 16")
	}
	if err := sizeplan.VerifyLayout[K, V](cfg.PairsPerChunk); err != nil {
		panic(err)
	}
	h := cfg.Hasher
	if h == nil {
		h = htcore.CRC32Hasher[K]{}
	}
	return &Table[K, V]{
		chunks:        make([]primaryChunk[K, V], cfg.N),
		pool:          newExtendedPool[K, V](cfg.Extended),
		hasher:        h,
		pairsPerChunk: cfg.PairsPerChunk,
	}
}

func (t *Table[K, V]) chunkFor(k K) *primaryChunk[K, V] {
	h := t.hasher.Hash(k)
	return &t.chunks[uint64(h)%uint64(len(t.chunks))]
}

// Stats reports the current, approximate counters.
func (t *Table[K, V]) Stats() htcore.StatsSnapshot { return t.stats.Snapshot() }

// Clear empties every chunk, the extended pool, and resets stats to
// zero. Not safe for concurrent use with any other operation — CHAIN
// provides no locking of its own.
func (t *Table[K, V]) Clear() {
	for i := range t.chunks {
		t.chunks[i] = primaryChunk[K, V]{}
	}
	t.pool.reset()
	t.stats.Reset()
}

// Iterate visits every live pair in chunk order, then extended-chain
// order within each chunk. A Remove decision clears the slot in place;
// clearing the last live slot of an extended chunk returns it to the
// pool, exactly as Remove does.
func (t *Table[K, V]) Iterate(visit htcore.Visitor[K, V]) {
	for ci := range t.chunks {
		c := &t.chunks[ci]
		for i := 0; i < int(t.pairsPerChunk); i++ {
			bit := uint32(1) << uint(i)
			if c.validMask&bit == 0 {
				continue
			}
			if visit(c.pairs[i].key, &c.pairs[i].value) == htcore.Remove {
				c.validMask &^= bit
				t.stats.AddPairs(-1)
			}
		}
		t.iterateExtended(c, visit)
	}
}

func (t *Table[K, V]) iterateExtended(c *primaryChunk[K, V], visit htcore.Visitor[K, V]) {
	var prev uint32 // 0 = predecessor is the primary chunk itself
	handle := c.nextExtended
	for handle != 0 {
		ec := t.pool.get(handle)
		next := ec.nextExtended
		for i := 0; i < maxPairsPerExtendedChunk; i++ {
			bit := uint8(1) << uint(i)
			if ec.keyValids&bit == 0 {
				continue
			}
			if visit(ec.pairs[i].key, &ec.pairs[i].value) == htcore.Remove {
				ec.keyValids &^= bit
				t.stats.AddPairs(-1)
			}
		}
		if ec.keyValids == 0 {
			t.unlinkExtended(c, prev, handle, next)
		} else {
			prev = handle
		}
		handle = next
	}
}

// unlinkExtended removes handle from the chain rooted at c, linking
// whichever came before it (the primary chunk itself when prevHandle
// is 0, or the previous extended chunk otherwise) directly to next,
// then returns handle to the pool.
func (t *Table[K, V]) unlinkExtended(c *primaryChunk[K, V], prevHandle, handle, next uint32) {
	if prevHandle == 0 {
		c.nextExtended = next
	} else {
		t.pool.get(prevHandle).nextExtended = next
	}
	t.pool.free(handle)
	t.stats.AddExtendedChunksUsed(-1)
}
