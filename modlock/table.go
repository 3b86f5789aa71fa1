package modlock

import (
	"github.com/yanet-dataplane/hashtable/htcore"
	"github.com/yanet-dataplane/hashtable/sizeplan"
)

type Config[K comparable] struct {
	N             uint32
	PairsPerChunk uint32
	Hasher        htcore.Hasher[K]
}

// Table is the statically-sized MOD-LOCK flavor: capacity is fixed for
// the table's whole lifetime.
type Table[K comparable, V any] struct {
	chunks        []chunk[K, V]
	stats         htcore.Stats
	hasher        htcore.Hasher[K]
	pairsPerChunk uint32
}

func New[K comparable, V any](cfg Config[K]) *Table[K, V] {
	if cfg.PairsPerChunk == 0 || cfg.PairsPerChunk > maxPairsPerChunk {
		panic("modlock: PairsPerChunk must be in (0, 32]")
	}
	if err := sizeplan.VerifyLayout[K, V](cfg.PairsPerChunk); err != nil {
		panic(err)
	}
	h := cfg.Hasher
	if h == nil {
		h = htcore.CRC32Hasher[K]{}
	}
	return &Table[K, V]{
		chunks:        make([]chunk[K, V], cfg.N),
		hasher:        h,
		pairsPerChunk: cfg.PairsPerChunk,
	}
}

// Hash exposes the table's configured hasher so a caller can compute a
// key's hash once and reuse it across a Lookup-then-Insert pair,
// matching spec.md's "caller supplies a precomputed hash" contract.
func (t *Table[K, V]) Hash(k K) uint32 { return t.hasher.Hash(k) }

func (t *Table[K, V]) chunkFor(hash uint32) *chunk[K, V] {
	return &t.chunks[uint64(hash)%uint64(len(t.chunks))]
}

func (t *Table[K, V]) Stats() htcore.StatsSnapshot { return t.stats.Snapshot() }

// Clear takes each chunk lock in ascending order, zeroes the chunk,
// bumps its generation, and releases the lock before moving to the
// next chunk, so it never holds more than one chunk lock at a time.
func (t *Table[K, V]) Clear() {
	for i := range t.chunks {
		c := &t.chunks[i]
		c.lock.Acquire()
		c.validMask = 0
		c.pairs = [maxPairsPerChunk]pair[K, V]{}
		c.generation++
		c.lock.Release()
	}
	t.stats.Reset()
}
