package chain

import (
	"math/bits"

	"github.com/yanet-dataplane/hashtable/htcore"
)

// Insert adds (k, v). Returns htcore.ErrDuplicate if k is already
// present anywhere in the chunk's chain, or htcore.ErrFull if every
// slot in the primary chunk and its whole extended chain is occupied
// and the extended pool has nothing left to grow the chain with.
//
// Within the winning slot, key and value are written before the valid
// bit that marks the slot live — the same write-then-publish ordering
// spec.md requires so a concurrent reader (in the locked variants)
// never observes a valid bit set over a half-written pair. CHAIN
// itself has no concurrent reader to protect against, but keeping the
// discipline here means chainlock can share this exact algorithm.
func (t *Table[K, V]) Insert(k K, v V) error {
	c := t.chunkFor(k)
	if _, ok := t.findInPrimary(c, k); ok {
		return htcore.ErrDuplicate
	}
	if _, ok := t.findInExtended(c, k); ok {
		return htcore.ErrDuplicate
	}

	if i, ok := freeSlot(c.validMask, t.pairsPerChunk); ok {
		c.pairs[i] = pair[K, V]{key: k, value: v}
		c.validMask |= uint32(1) << uint(i)
		t.stats.AddPairs(1)
		return nil
	}

	handle := c.nextExtended
	var last *extendedChunk[K, V]
	for handle != 0 {
		ec := t.pool.get(handle)
		if i, ok := freeExtendedSlot(ec.keyValids); ok {
			ec.pairs[i] = pair[K, V]{key: k, value: v}
			ec.keyValids |= uint8(1) << uint(i)
			t.stats.AddPairs(1)
			t.bumpChainLength(c)
			return nil
		}
		last = ec
		handle = ec.nextExtended
	}

	newHandle := t.pool.alloc()
	if newHandle == 0 {
		t.stats.IncInsertFailed()
		return htcore.ErrFull
	}
	ec := t.pool.get(newHandle)
	ec.pairs[0] = pair[K, V]{key: k, value: v}
	ec.keyValids = 1
	if last == nil {
		c.nextExtended = newHandle
	} else {
		last.nextExtended = newHandle
	}
	t.stats.AddPairs(1)
	t.stats.AddExtendedChunksUsed(1)
	t.bumpChainLength(c)
	return nil
}

// Lookup returns a pointer into the table's own storage for k, if
// present, so the caller may mutate the value in place. The pointer is
// valid until the next call that could move or free the slot (Remove,
// Clear, or an Iterate that removes k) — CHAIN provides no locking of
// its own to extend that window across goroutines.
func (t *Table[K, V]) Lookup(k K) (*V, bool) {
	c := t.chunkFor(k)
	if i, ok := t.findInPrimary(c, k); ok {
		return &c.pairs[i].value, true
	}
	if ec, i, ok := t.findInExtendedChunk(c, k); ok {
		return &ec.pairs[i].value, true
	}
	return nil, false
}

// Remove deletes k, if present, and returns whether it was found.
// Emptying the last live slot of an extended chunk unlinks it from
// the chain and returns it to the pool immediately, so CHAIN keeps
// chains as short as their live population at all times.
func (t *Table[K, V]) Remove(k K) bool {
	c := t.chunkFor(k)
	if i, ok := t.findInPrimary(c, k); ok {
		c.validMask &^= uint32(1) << uint(i)
		c.pairs[i] = pair[K, V]{}
		t.stats.AddPairs(-1)
		return true
	}

	var prev uint32
	handle := c.nextExtended
	for handle != 0 {
		ec := t.pool.get(handle)
		next := ec.nextExtended
		if i, ok := findInExtended(ec, k); ok {
			ec.keyValids &^= uint8(1) << uint(i)
			ec.pairs[i] = pair[K, V]{}
			t.stats.AddPairs(-1)
			if ec.keyValids == 0 {
				t.unlinkExtended(c, prev, handle, next)
			}
			return true
		}
		prev = handle
		handle = next
	}
	return false
}

func (t *Table[K, V]) findInPrimary(c *primaryChunk[K, V], k K) (int, bool) {
	mask := c.validMask
	for mask != 0 {
		i := bits.TrailingZeros32(mask)
		mask &^= uint32(1) << uint(i)
		if c.pairs[i].key == k {
			return i, true
		}
	}
	return 0, false
}

func (t *Table[K, V]) findInExtended(c *primaryChunk[K, V], k K) (int, bool) {
	_, i, ok := t.findInExtendedChunk(c, k)
	return i, ok
}

func (t *Table[K, V]) findInExtendedChunk(c *primaryChunk[K, V], k K) (*extendedChunk[K, V], int, bool) {
	handle := c.nextExtended
	for handle != 0 {
		ec := t.pool.get(handle)
		if i, ok := findInExtended(ec, k); ok {
			return ec, i, true
		}
		handle = ec.nextExtended
	}
	return nil, 0, false
}

func findInExtended[K comparable, V any](ec *extendedChunk[K, V], k K) (int, bool) {
	mask := ec.keyValids
	for mask != 0 {
		i := bits.TrailingZeros8(mask)
		mask &^= uint8(1) << uint(i)
		if ec.pairs[i].key == k {
			return i, true
		}
	}
	return 0, false
}

// bumpChainLength records the chain length rooted at c — the primary
// chunk plus however many extended chunks presently hang off it —
// against the table-wide longest-chain high-water mark.
func (t *Table[K, V]) bumpChainLength(c *primaryChunk[K, V]) {
	n := uint64(1)
	handle := c.nextExtended
	for handle != 0 {
		n++
		handle = t.pool.get(handle).nextExtended
	}
	t.stats.BumpLongestChain(n)
}

func freeSlot(validMask uint32, pairsPerChunk uint32) (int, bool) {
	usable := uint32(1)<<pairsPerChunk - 1
	free := usable &^ validMask
	if free == 0 {
		return 0, false
	}
	return bits.TrailingZeros32(free), true
}

func freeExtendedSlot(keyValids uint8) (int, bool) {
	const usable = uint8(1)<<maxPairsPerExtendedChunk - 1
	free := usable &^ keyValids
	if free == 0 {
		return 0, false
	}
	return bits.TrailingZeros8(free), true
}
