package modid32

import (
	"math/bits"

	"github.com/yanet-dataplane/hashtable/htcore"
)

// Insert stores v under k. v's top bit is reserved by the table and
// must be clear; a set top bit is a caller error (the core does not
// check for it, per spec.md — passing a value with the bit already
// set corrupts the validity encoding silently). If k is already
// present, its low 31 bits are overwritten in place — MOD-ID32's
// insert is idempotent, not a duplicate-rejecting insert. Returns
// htcore.ErrFull if k is new and the chunk has no free slot — MOD-ID32
// has no overflow chain to fall back to.
func (t *Table[K]) Insert(k K, v uint32) error {
	c := t.chunkFor(k)
	mask := c.validMask
	free := int(-1)
	for i := 0; i < int(t.pairsPerChunk); i++ {
		bit := uint32(1) << uint(i)
		if mask&bit == 0 {
			if free < 0 {
				free = i
			}
			continue
		}
		if c.pairs[i].key == k {
			c.pairs[i].value.Store(v&^validBit | validBit)
			return nil
		}
	}
	if free < 0 {
		t.stats.IncInsertFailed()
		return htcore.ErrFull
	}
	s := &c.pairs[free]
	s.key = k
	s.value.Store(v | validBit)
	c.validMask |= uint32(1) << uint(free)
	t.stats.AddPairs(1)
	return nil
}

// LookupBurst resolves len(keys) keys in one call, writing each
// input's stored value (or AbsentValue) to the matching index of out.
// keys and out must have equal length no greater than 32 (an empty
// batch is a no-op) —
// spec.md gives lookup_burst no error vocabulary, only per-slot
// sentinels, so an oversized or mismatched batch is a programmer
// error and panics rather than returning an error value.
//
// Chunk lookups for every key are resolved before any key comparison
// runs, keeping all M chunk loads in flight together instead of
// serializing hash-then-compare per key — the batch-oriented access
// pattern spec.md calls for.
func (t *Table[K]) LookupBurst(keys []K, out []uint32) {
	if len(keys) != len(out) {
		panic("modid32: LookupBurst: len(keys) != len(out)")
	}
	if len(keys) > maxPairsPerChunk {
		panic("modid32: LookupBurst: batch exceeds 32 keys")
	}
	var chunks [maxPairsPerChunk]*chunk[K]
	for i, k := range keys {
		chunks[i] = t.chunkFor(k)
	}
	for i, k := range keys {
		out[i] = t.lookupInChunk(chunks[i], k)
	}
}

// Lookup resolves a single key — a thin wrapper over the same slot
// scan LookupBurst uses, for callers that only have one key in hand.
func (t *Table[K]) Lookup(k K) (uint32, bool) {
	v := t.lookupInChunk(t.chunkFor(k), k)
	return v &^ validBit, v&validBit != 0
}

func (t *Table[K]) lookupInChunk(c *chunk[K], k K) uint32 {
	mask := c.validMask
	for mask != 0 {
		i := bits.TrailingZeros32(mask)
		mask &^= uint32(1) << uint(i)
		v := c.pairs[i].value.Load()
		if v&validBit == 0 {
			continue
		}
		if c.pairs[i].key == k {
			return v
		}
	}
	return AbsentValue
}

// Remove clears k's slot, if present.
func (t *Table[K]) Remove(k K) bool {
	c := t.chunkFor(k)
	mask := c.validMask
	for mask != 0 {
		i := bits.TrailingZeros32(mask)
		mask &^= uint32(1) << uint(i)
		if c.pairs[i].value.Load()&validBit == 0 {
			continue
		}
		if c.pairs[i].key == k {
			c.pairs[i].value.Store(AbsentValue)
			c.validMask &^= uint32(1) << uint(i)
			t.stats.AddPairs(-1)
			return true
		}
	}
	return false
}

// Iterate visits every live pair. A Remove decision clears the slot.
func (t *Table[K]) Iterate(visit func(k K, v uint32) htcore.VisitDecision) {
	for ci := range t.chunks {
		c := &t.chunks[ci]
		mask := c.validMask
		for mask != 0 {
			i := bits.TrailingZeros32(mask)
			mask &^= uint32(1) << uint(i)
			v := c.pairs[i].value.Load()
			if v&validBit == 0 {
				continue
			}
			if visit(c.pairs[i].key, v&^validBit) == htcore.Remove {
				c.pairs[i].value.Store(AbsentValue)
				c.validMask &^= uint32(1) << uint(i)
				t.stats.AddPairs(-1)
			}
		}
	}
}
