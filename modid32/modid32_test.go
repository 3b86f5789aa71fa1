package modid32

import (
	"testing"

	"github.com/yanet-dataplane/hashtable/htcore"
)

type identityHasher struct{}

func (identityHasher) Hash(k uint32) uint32 { return k }

func TestBurstLookupSequentialKeys(t *testing.T) {
	tb := New[uint32](Config[uint32]{N: 16, PairsPerChunk: 4, Hasher: identityHasher{}})
	keys := make([]uint32, 32)
	for i := range keys {
		keys[i] = uint32(i)
		if err := tb.Insert(uint32(i), uint32(i+1)); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	out := make([]uint32, 32)
	tb.LookupBurst(keys, out)
	for i, v := range out {
		if v != uint32(i+1) {
			t.Fatalf("out[%d] = %d; want %d", i, v, i+1)
		}
	}
}

func TestBurstLookupAbsentKeys(t *testing.T) {
	tb := New[uint32](Config[uint32]{N: 16, PairsPerChunk: 4, Hasher: identityHasher{}})
	for i := uint32(0); i < 32; i++ {
		mustInsert(t, tb, i, i+1)
	}
	keys := []uint32{100, 101}
	out := make([]uint32, 2)
	tb.LookupBurst(keys, out)
	if out[0] != AbsentValue || out[1] != AbsentValue {
		t.Fatalf("out = %v; want [%d, %d]", out, AbsentValue, AbsentValue)
	}
}

func TestBurstLookupEmptyBatch(t *testing.T) {
	tb := New[uint32](Config[uint32]{N: 4, PairsPerChunk: 4, Hasher: identityHasher{}})
	tb.LookupBurst(nil, nil) // must be a permitted no-op
}

func TestLookupBurstPanicsOnOversizedBatch(t *testing.T) {
	tb := New[uint32](Config[uint32]{N: 4, PairsPerChunk: 4, Hasher: identityHasher{}})
	keys := make([]uint32, 33)
	out := make([]uint32, 33)
	defer func() {
		if recover() == nil {
			t.Fatalf("LookupBurst with 33 keys did not panic")
		}
	}()
	tb.LookupBurst(keys, out)
}

func TestLookupBurstPanicsOnLengthMismatch(t *testing.T) {
	tb := New[uint32](Config[uint32]{N: 4, PairsPerChunk: 4, Hasher: identityHasher{}})
	defer func() {
		if recover() == nil {
			t.Fatalf("LookupBurst with mismatched lengths did not panic")
		}
	}()
	tb.LookupBurst(make([]uint32, 2), make([]uint32, 3))
}

func TestInsertOnExistingKeyOverwritesInPlace(t *testing.T) {
	tb := New[uint32](Config[uint32]{N: 1, PairsPerChunk: 4, Hasher: identityHasher{}})
	for i := uint32(0); i < 4; i++ {
		mustInsert(t, tb, i, i)
	}
	if err := tb.Insert(0, 99); err != nil {
		t.Fatalf("Insert over existing key: %v", err)
	}
	v, ok := tb.Lookup(0)
	if !ok || v != 99 {
		t.Fatalf("Lookup(0) after overwrite = %d, %v; want 99, true", v, ok)
	}
	if snap := tb.Stats(); snap.Pairs != 4 {
		t.Fatalf("Pairs after overwrite = %d; want 4 (no new slot consumed)", snap.Pairs)
	}
}

func TestInsertIntoFullChunkWithNewKey(t *testing.T) {
	tb := New[uint32](Config[uint32]{N: 1, PairsPerChunk: 4, Hasher: identityHasher{}})
	for i := uint32(0); i < 4; i++ {
		mustInsert(t, tb, i, i)
	}
	if err := tb.Insert(4, 4); err != htcore.ErrFull {
		t.Fatalf("Insert into full chunk = %v; want ErrFull", err)
	}
}

func TestRemoveAndReinsert(t *testing.T) {
	tb := New[uint32](Config[uint32]{N: 1, PairsPerChunk: 4, Hasher: identityHasher{}})
	mustInsert(t, tb, 1, 10)
	if !tb.Remove(1) {
		t.Fatalf("Remove(1) = false")
	}
	if _, ok := tb.Lookup(1); ok {
		t.Fatalf("Lookup(1) found after Remove")
	}
	if err := tb.Insert(1, 20); err != nil {
		t.Fatalf("reinsert after Remove: %v", err)
	}
	v, ok := tb.Lookup(1)
	if !ok || v != 20 {
		t.Fatalf("Lookup(1) = %d, %v; want 20, true", v, ok)
	}
}

func mustInsert(t *testing.T, tb *Table[uint32], k, v uint32) {
	t.Helper()
	if err := tb.Insert(k, v); err != nil {
		t.Fatalf("Insert(%d, %d): %v", k, v, err)
	}
}
