package modlock

import (
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/yanet-dataplane/hashtable/htcore"
	"github.com/yanet-dataplane/hashtable/sizeplan"
)

// CalculateSizeof reports the number of bytes an N-chunk, pairsPerChunk
// dynamic MOD-LOCK table needs, so a caller can provision that many
// bytes of backing memory (typically shared or huge-page) before
// calling Updater.UpdatePointer. Panics on the same PairsPerChunk
// range as New — a size a caller can never actually construct is not
// worth reporting a number for.
func CalculateSizeof[K comparable, V any](n uint32, pairsPerChunk uint32) uintptr {
	if pairsPerChunk == 0 || pairsPerChunk > maxPairsPerChunk {
		panic("modlock: PairsPerChunk must be in (0, 32]")
	}
	var c chunk[K, V]
	return uintptr(n) * unsafe.Sizeof(c)
}

// DynamicTable mirrors Table but resolves its chunk array through
// whatever pointer and generation an Updater last installed, instead
// of owning a fixed Go slice for its whole lifetime.
type DynamicTable[K comparable, V any] struct {
	base          atomic.Pointer[chunk[K, V]]
	n             atomic.Uint32
	gen           atomic.Uint64
	stats         htcore.Stats
	hasher        htcore.Hasher[K]
	pairsPerChunk uint32
}

// Updater is the sole permitted mutator of a DynamicTable's backing
// pointer. spec.md requires the caller to invoke it only during a
// quiescent interval — the package provides no reader-writer epoch of
// its own, so a live reader dereferencing chunks from the pointer
// UpdatePointer is about to replace would race with the swap.
type Updater[K comparable, V any] struct {
	table *DynamicTable[K, V]
}

// NewUpdater creates a DynamicTable together with the Updater that is
// its only way to become non-empty. hasher defaults to CRC32Hasher[K]
// when nil.
func NewUpdater[K comparable, V any](hasher htcore.Hasher[K], pairsPerChunk uint32) (*DynamicTable[K, V], *Updater[K, V]) {
	if pairsPerChunk == 0 || pairsPerChunk > maxPairsPerChunk {
		panic("modlock: PairsPerChunk must be in (0, 32]")
	}
	if err := sizeplan.VerifyLayout[K, V](pairsPerChunk); err != nil {
		panic(err)
	}
	if hasher == nil {
		hasher = htcore.CRC32Hasher[K]{}
	}
	t := &DynamicTable[K, V]{hasher: hasher, pairsPerChunk: pairsPerChunk}
	return t, &Updater[K, V]{table: t}
}

// UpdatePointer installs a zeroed chunk array of n entries starting at
// base as the table's new backing store, tagged with generation gen.
// base must point at at least CalculateSizeof[K, V](n, pairsPerChunk)
// bytes, already zeroed by the caller (the region's ownership passes
// to the table; the table never allocates it).
func (u *Updater[K, V]) UpdatePointer(base unsafe.Pointer, gen uint64, n uint32) {
	u.table.base.Store((*chunk[K, V])(base))
	u.table.n.Store(n)
	u.table.gen.Store(gen)
	u.table.stats.Reset()
}

// Generation reports the generation tag installed by the most recent
// UpdatePointer call, letting an observer distinguish a logical reset
// from an ordinary data update.
func (t *DynamicTable[K, V]) Generation() uint64 { return t.gen.Load() }

func (t *DynamicTable[K, V]) chunks() []chunk[K, V] {
	base := t.base.Load()
	n := t.n.Load()
	if base == nil || n == 0 {
		return nil
	}
	return unsafe.Slice(base, n)
}

func (t *DynamicTable[K, V]) chunkFor(hash uint32, chunks []chunk[K, V]) *chunk[K, V] {
	return &chunks[uint64(hash)%uint64(len(chunks))]
}

func (t *DynamicTable[K, V]) Hash(k K) uint32 { return t.hasher.Hash(k) }

func (t *DynamicTable[K, V]) Stats() htcore.StatsSnapshot { return t.stats.Snapshot() }

func (t *DynamicTable[K, V]) Insert(hash uint32, k K, v V) error {
	chunks := t.chunks()
	if len(chunks) == 0 {
		return htcore.ErrFull
	}
	c := t.chunkFor(hash, chunks)
	c.lock.Acquire()
	defer c.lock.Release()

	free := -1
	mask := c.validMask
	for i := 0; i < int(t.pairsPerChunk); i++ {
		bit := uint32(1) << uint(i)
		if mask&bit == 0 {
			if free < 0 {
				free = i
			}
			continue
		}
		if c.pairs[i].key == k {
			return htcore.ErrDuplicate
		}
	}
	if free < 0 {
		t.stats.IncInsertFailed()
		return htcore.ErrFull
	}
	c.pairs[free] = pair[K, V]{key: k, value: v}
	c.validMask |= uint32(1) << uint(free)
	c.generation++
	t.stats.AddPairs(1)
	return nil
}

func (t *DynamicTable[K, V]) Lookup(hash uint32, k K) (*Guard[V], bool) {
	chunks := t.chunks()
	if len(chunks) == 0 {
		return nil, false
	}
	c := t.chunkFor(hash, chunks)
	c.lock.Acquire()
	mask := c.validMask
	for mask != 0 {
		i := bits.TrailingZeros32(mask)
		mask &^= uint32(1) << uint(i)
		if c.pairs[i].key == k {
			return newGuard(&c.lock, &c.pairs[i].value), true
		}
	}
	c.lock.Release()
	return nil, false
}

func (t *DynamicTable[K, V]) Remove(hash uint32, k K) bool {
	chunks := t.chunks()
	if len(chunks) == 0 {
		return false
	}
	c := t.chunkFor(hash, chunks)
	c.lock.Acquire()
	defer c.lock.Release()
	mask := c.validMask
	for mask != 0 {
		i := bits.TrailingZeros32(mask)
		mask &^= uint32(1) << uint(i)
		if c.pairs[i].key == k {
			c.validMask &^= uint32(1) << uint(i)
			c.pairs[i] = pair[K, V]{}
			c.generation++
			t.stats.AddPairs(-1)
			return true
		}
	}
	return false
}

// InsertOrUpdate mirrors Table.InsertOrUpdate: stores v under k,
// replacing any existing value for k in place, over whatever chunk
// array the most recent UpdatePointer installed.
func (t *DynamicTable[K, V]) InsertOrUpdate(hash uint32, k K, v V) bool {
	chunks := t.chunks()
	if len(chunks) == 0 {
		return false
	}
	c := t.chunkFor(hash, chunks)
	c.lock.Acquire()
	defer c.lock.Release()

	free := -1
	mask := c.validMask
	for i := 0; i < int(t.pairsPerChunk); i++ {
		bit := uint32(1) << uint(i)
		if mask&bit == 0 {
			if free < 0 {
				free = i
			}
			continue
		}
		if c.pairs[i].key == k {
			c.pairs[i].value = v
			c.generation++
			return true
		}
	}
	if free < 0 {
		t.stats.IncInsertFailed()
		return false
	}
	c.pairs[free] = pair[K, V]{key: k, value: v}
	c.validMask |= uint32(1) << uint(free)
	c.generation++
	t.stats.AddPairs(1)
	return true
}

// Clear takes every chunk lock in ascending order, zeroes it, bumps
// its generation, and releases — same lock-ordering discipline as
// Table.Clear, over whatever chunk array is currently installed.
func (t *DynamicTable[K, V]) Clear() {
	chunks := t.chunks()
	for i := range chunks {
		c := &chunks[i]
		c.lock.Acquire()
		c.validMask = 0
		c.pairs = [maxPairsPerChunk]pair[K, V]{}
		c.generation++
		c.lock.Release()
	}
	t.stats.Reset()
}

// Iterate walks every chunk of the currently installed array in order,
// locking each in turn, and calls visit for every live pair. A Remove
// decision clears that slot before the chunk lock is released.
func (t *DynamicTable[K, V]) Iterate(visit htcore.Visitor[K, V]) {
	chunks := t.chunks()
	for ci := range chunks {
		c := &chunks[ci]
		c.lock.Acquire()
		mask := c.validMask
		for mask != 0 {
			i := bits.TrailingZeros32(mask)
			mask &^= uint32(1) << uint(i)
			if visit(c.pairs[i].key, &c.pairs[i].value) == htcore.Remove {
				c.validMask &^= uint32(1) << uint(i)
				c.pairs[i] = pair[K, V]{}
				c.generation++
				t.stats.AddPairs(-1)
			}
		}
		c.lock.Release()
	}
}

// IterateSince behaves like Iterate but skips any chunk whose
// generation counter still equals sinceGen[i], and reports
// the generation observed for each visited chunk. len(sinceGen) must
// equal the currently installed array's chunk count — a caller must
// re-provision sinceGen after any UpdatePointer that changes n.
func (t *DynamicTable[K, V]) IterateSince(sinceGen []uint64, visit htcore.Visitor[K, V]) {
	chunks := t.chunks()
	if len(sinceGen) != len(chunks) {
		panic("modlock: IterateSince: len(sinceGen) must equal chunk count")
	}
	for i := range chunks {
		c := &chunks[i]
		c.lock.Acquire()
		gen := c.generation
		if gen == sinceGen[i] {
			c.lock.Release()
			continue
		}
		mask := c.validMask
		for mask != 0 {
			j := bits.TrailingZeros32(mask)
			mask &^= uint32(1) << uint(j)
			if visit(c.pairs[j].key, &c.pairs[j].value) == htcore.Remove {
				c.validMask &^= uint32(1) << uint(j)
				c.pairs[j] = pair[K, V]{}
				c.generation++
				t.stats.AddPairs(-1)
			}
		}
		sinceGen[i] = c.generation
		c.lock.Release()
	}
}
