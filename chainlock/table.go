package chainlock

import (
	"github.com/yanet-dataplane/hashtable/htcore"
	"github.com/yanet-dataplane/hashtable/sizeplan"
)

// Config mirrors package chain's, plus nothing extra — CHAIN-LOCK adds
// concurrency safety, not new configuration surface.
type Config[K comparable] struct {
	N             uint32
	Extended      uint32
	PairsPerChunk uint32
	Hasher        htcore.Hasher[K]
}

// Table is a CHAIN-LOCK hashtable: safe for concurrent Insert, Lookup,
// Remove, and Sweep calls from any number of goroutines.
type Table[K comparable, V any] struct {
	chunks        []primaryChunk[K, V]
	pool          extendedPool[K, V]
	stats         htcore.Stats
	hasher        htcore.Hasher[K]
	pairsPerChunk uint32
}

func New[K comparable, V any](cfg Config[K]) *Table[K, V] {
	if cfg.PairsPerChunk == 0 || cfg.PairsPerChunk > maxPairsPerChunk {
		panic("chainlock: PairsPerChunk must be in (0, 16]")
	}
	switch cfg.PairsPerChunk {
	case 1, 4, 8, 16:
	default:
		panic("chainlock: PairsPerChunk must be 1, 4, 8, or 16")
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

func (t *Table[K, V]) Stats() htcore.StatsSnapshot { return t.stats.Snapshot() }

// Clear is not safe to call concurrently with any other operation —
// unlike Insert/Lookup/Remove, wiping every chunk's contents cannot be
// made atomic against a single chunk lock. Clear takes every chunk
// lock in ascending order (never pool-then-chunk) before touching
// anything, clears and releases each chunk, and only then resets the
// pool under the pool lock.
func (t *Table[K, V]) Clear() {
	for i := range t.chunks {
		t.chunks[i].lock.Acquire()
	}
	for i := range t.chunks {
		c := &t.chunks[i]
		c.validMask = 0
		c.nextExtended = 0
		c.pairs = [maxPairsPerChunk]pair[K, V]{}
		c.lock.Release()
	}
	t.pool.reset()
	t.stats.Reset()
}
