package modid32

import (
	"github.com/yanet-dataplane/hashtable/htcore"
	"github.com/yanet-dataplane/hashtable/sizeplan"
)

type Config[K comparable] struct {
	N             uint32
	PairsPerChunk uint32
	Hasher        htcore.Hasher[K]
}

// Table is a MOD-ID32 hashtable. It performs no internal locking:
// spec.md scopes it to read-heavy workloads with infrequent,
// externally-serialized writers, so concurrent Insert calls (even
// against different keys) are the caller's responsibility to
// serialize. Concurrent Insert and LookupBurst are safe together
// without a lock because every cross-goroutine dependency is carried
// by the release/acquire discipline on each slot's value field.
type Table[K comparable] struct {
	chunks        []chunk[K]
	stats         htcore.Stats
	hasher        htcore.Hasher[K]
	pairsPerChunk uint32
}

func New[K comparable](cfg Config[K]) *Table[K] {
	if cfg.PairsPerChunk == 0 || cfg.PairsPerChunk > maxPairsPerChunk {
		panic("modid32: PairsPerChunk must be in (0, 32]")
	}
	if err := sizeplan.VerifyLayout[K, uint32](cfg.PairsPerChunk); err != nil {
		panic(err)
	}
	h := cfg.Hasher
	if h == nil {
		h = htcore.CRC32Hasher[K]{}
	}
	return &Table[K]{
		chunks:        make([]chunk[K], cfg.N),
		hasher:        h,
		pairsPerChunk: cfg.PairsPerChunk,
	}
}

func (t *Table[K]) chunkFor(k K) *chunk[K] {
	h := t.hasher.Hash(k)
	return &t.chunks[uint64(h)%uint64(len(t.chunks))]
}

func (t *Table[K]) Stats() htcore.StatsSnapshot { return t.stats.Snapshot() }

func (t *Table[K]) Clear() {
	for i := range t.chunks {
		t.chunks[i] = chunk[K]{}
	}
	t.stats.Reset()
}
