package modlock

import (
	"math/bits"

	"github.com/yanet-dataplane/hashtable/htcore"
)

// Insert stores (k, v) under the caller-supplied hash. Returns
// htcore.ErrDuplicate if k is already present, htcore.ErrFull if the
// chunk has no free slot among its pairsPerChunk slots — MOD-LOCK
// never overflows into a chain.
func (t *Table[K, V]) Insert(hash uint32, k K, v V) error {
	c := t.chunkFor(hash)
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

// InsertOrUpdate stores v under k, replacing any existing value for k
// in place. It fails only when the chunk is full of pairsPerChunk
// distinct foreign keys and k is not among them.
func (t *Table[K, V]) InsertOrUpdate(hash uint32, k K, v V) bool {
	c := t.chunkFor(hash)
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

// Lookup returns a Guard over the value for k, holding the target
// chunk's lock. The caller must Release it.
func (t *Table[K, V]) Lookup(hash uint32, k K) (*Guard[V], bool) {
	c := t.chunkFor(hash)
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

// Remove clears k's slot under the chunk lock.
func (t *Table[K, V]) Remove(hash uint32, k K) bool {
	c := t.chunkFor(hash)
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

// Iterate walks every chunk in order, locking each in turn, and calls
// visit for every live pair. A Remove decision clears that slot before
// the chunk lock is released.
func (t *Table[K, V]) Iterate(visit htcore.Visitor[K, V]) {
	for ci := range t.chunks {
		c := &t.chunks[ci]
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
// the generation observed for each visited chunk so a caller can save
// it for the next incremental sweep. len(sinceGen) must equal the
// table's chunk count.
func (t *Table[K, V]) IterateSince(sinceGen []uint64, visit htcore.Visitor[K, V]) {
	if len(sinceGen) != len(t.chunks) {
		panic("modlock: IterateSince: len(sinceGen) must equal chunk count")
	}
	for i := range t.chunks {
		c := &t.chunks[i]
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
