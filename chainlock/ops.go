package chainlock

import (
	"math/bits"

	"github.com/yanet-dataplane/hashtable/htcore"
)

// Insert adds (k, v), taking and releasing the target chunk's lock for
// the duration. Semantics otherwise match package chain's Insert.
//
// Passing WithToken(tok) for a tok identifying k's own chunk — as
// handed to Sweep's keep callback, or obtained from an outstanding
// Guard via Guard.Token — reenters that already-held lock instead of
// acquiring it again, which would otherwise deadlock the calling
// goroutine against itself. A token for a different chunk has no
// effect; that chunk's lock is acquired normally.
func (t *Table[K, V]) Insert(k K, v V, opts ...Option) error {
	c := t.chunkFor(k)
	if resolveOptions(opts).holds(&c.lock) {
		return t.insertLocked(c, k, v)
	}
	c.lock.Acquire()
	defer c.lock.Release()
	return t.insertLocked(c, k, v)
}

func (t *Table[K, V]) insertLocked(c *primaryChunk[K, V], k K, v V) error {
	if _, ok := t.findLocked(c, k); ok {
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

// Lookup returns a Guard over the value for k. If the call is not
// reentering an already-held chunk (see Insert), the Guard holds the
// target chunk's lock and the caller must call Guard.Release once
// done reading — until then, no other goroutine can Insert, Remove,
// or Sweep against that chunk. A reentrant Lookup (WithToken against
// the calling goroutine's own held chunk) returns a Guard whose
// Release is a no-op, since the lock is owned by whoever passed the
// token in.
func (t *Table[K, V]) Lookup(k K, opts ...Option) (*Guard[V], bool) {
	c := t.chunkFor(k)
	reentrant := resolveOptions(opts).holds(&c.lock)
	if !reentrant {
		c.lock.Acquire()
	}
	if i, ok := t.findInPrimary(c, k); ok {
		if reentrant {
			return newBorrowedGuard(&c.lock, &c.pairs[i].value), true
		}
		return newGuard(&c.lock, &c.pairs[i].value), true
	}
	if ec, i, ok := t.findInExtendedChunk(c, k); ok {
		if reentrant {
			return newBorrowedGuard(&c.lock, &ec.pairs[i].value), true
		}
		return newGuard(&c.lock, &ec.pairs[i].value), true
	}
	if !reentrant {
		c.lock.Release()
	}
	return nil, false
}

// Remove deletes k, if present. See Insert for WithToken reentrancy.
func (t *Table[K, V]) Remove(k K, opts ...Option) bool {
	c := t.chunkFor(k)
	if resolveOptions(opts).holds(&c.lock) {
		return t.removeLocked(c, k)
	}
	c.lock.Acquire()
	defer c.lock.Release()
	return t.removeLocked(c, k)
}

func (t *Table[K, V]) removeLocked(c *primaryChunk[K, V], k K) bool {
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

// Sweep is the externally-driven GC hook: it walks every chunk in
// order, taking each chunk's lock exactly once, and calls
// keep(k, v, tok) for every live pair. A false return clears that
// pair in place under the held lock, with the same slot-clearing and
// chain-unlinking steps Remove takes.
//
// tok identifies the chunk currently locked. keep may pass tok into
// WithToken on a nested Insert, Lookup, or Remove call against this
// same table — including against k's own chunk — without deadlocking,
// since that call recognizes tok as a lock the calling goroutine
// already holds and reenters it instead of spinning on it. A call
// keep makes against a different chunk acquires that chunk's lock
// normally; the pool lock nests inside either way, per the package's
// stated lock order.
func (t *Table[K, V]) Sweep(keep func(k K, v *V, tok ChunkToken) bool) {
	for i := range t.chunks {
		c := &t.chunks[i]
		c.lock.Acquire()
		t.sweepLocked(c, ChunkToken{lock: &c.lock}, keep)
		c.lock.Release()
	}
}

func (t *Table[K, V]) sweepLocked(c *primaryChunk[K, V], tok ChunkToken, keep func(K, *V, ChunkToken) bool) {
	mask := c.validMask
	for mask != 0 {
		i := bits.TrailingZeros32(mask)
		mask &^= uint32(1) << uint(i)
		if !keep(c.pairs[i].key, &c.pairs[i].value, tok) {
			c.validMask &^= uint32(1) << uint(i)
			c.pairs[i] = pair[K, V]{}
			t.stats.AddPairs(-1)
		}
	}

	var prev uint32
	handle := c.nextExtended
	for handle != 0 {
		ec := t.pool.get(handle)
		next := ec.nextExtended
		emask := ec.keyValids
		for emask != 0 {
			i := bits.TrailingZeros8(emask)
			emask &^= uint8(1) << uint(i)
			if !keep(ec.pairs[i].key, &ec.pairs[i].value, tok) {
				ec.keyValids &^= uint8(1) << uint(i)
				ec.pairs[i] = pair[K, V]{}
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

func (t *Table[K, V]) unlinkExtended(c *primaryChunk[K, V], prevHandle, handle, next uint32) {
	if prevHandle == 0 {
		c.nextExtended = next
	} else {
		t.pool.get(prevHandle).nextExtended = next
	}
	t.pool.free(handle)
	t.stats.AddExtendedChunksUsed(-1)
}

func (t *Table[K, V]) findLocked(c *primaryChunk[K, V], k K) (int, bool) {
	if i, ok := t.findInPrimary(c, k); ok {
		return i, true
	}
	_, i, ok := t.findInExtendedChunk(c, k)
	return i, ok
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
