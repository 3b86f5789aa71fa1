package modlock

import (
	"testing"
	"unsafe"

	"github.com/yanet-dataplane/hashtable/htcore"
)

type identityHasher struct{}

func (identityHasher) Hash(k uint32) uint32 { return k }

func newTestTable(n, pairsPerChunk uint32) *Table[uint32, int] {
	return New[uint32, int](Config[uint32]{N: n, PairsPerChunk: pairsPerChunk, Hasher: identityHasher{}})
}

func TestEmptyThenInsertThenLookup(t *testing.T) {
	tb := newTestTable(64, 8)
	if err := tb.Insert(tb.Hash(42), 42, 1000); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	g, ok := tb.Lookup(tb.Hash(42), 42)
	if !ok {
		t.Fatalf("Lookup(42) not found")
	}
	if *g.Value() != 1000 {
		t.Fatalf("Guard.Value() = %d; want 1000", *g.Value())
	}
	g.Release()
	if snap := tb.Stats(); snap.Pairs != 1 {
		t.Fatalf("Pairs = %d; want 1", snap.Pairs)
	}
}

func TestFullChunkWithoutChaining(t *testing.T) {
	tb := newTestTable(1, 4)
	for _, k := range []uint32{1, 2, 3, 4} {
		if err := tb.Insert(tb.Hash(k), k, 0); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}
	if err := tb.Insert(tb.Hash(5), 5, 0); err != htcore.ErrFull {
		t.Fatalf("Insert(5) = %v; want ErrFull", err)
	}
	snap := tb.Stats()
	if snap.InsertFailed != 1 {
		t.Fatalf("InsertFailed = %d; want 1", snap.InsertFailed)
	}
	if snap.Pairs != 4 {
		t.Fatalf("Pairs = %d; want 4", snap.Pairs)
	}
}

func TestInsertOrUpdateReplacesInPlace(t *testing.T) {
	tb := newTestTable(4, 4)
	if !tb.InsertOrUpdate(tb.Hash(1), 1, 10) {
		t.Fatalf("InsertOrUpdate first call failed")
	}
	if !tb.InsertOrUpdate(tb.Hash(1), 1, 20) {
		t.Fatalf("InsertOrUpdate update call failed")
	}
	g, ok := tb.Lookup(tb.Hash(1), 1)
	if !ok || *g.Value() != 20 {
		t.Fatalf("Lookup(1) = %v, %v; want 20, true", g, ok)
	}
	g.Release()
	if snap := tb.Stats(); snap.Pairs != 1 {
		t.Fatalf("Pairs = %d; want 1 (update must not add a new pair)", snap.Pairs)
	}
}

func TestInsertOrUpdateFullWithForeignKeys(t *testing.T) {
	tb := newTestTable(1, 2)
	if !tb.InsertOrUpdate(tb.Hash(1), 1, 0) {
		t.Fatalf("InsertOrUpdate(1) failed")
	}
	if !tb.InsertOrUpdate(tb.Hash(2), 2, 0) {
		t.Fatalf("InsertOrUpdate(2) failed")
	}
	if tb.InsertOrUpdate(tb.Hash(3), 3, 0) {
		t.Fatalf("InsertOrUpdate(3) succeeded against a full chunk of foreign keys")
	}
}

func TestRemoveThenReinsert(t *testing.T) {
	tb := newTestTable(4, 4)
	mustInsert(t, tb, 1, 100)
	if !tb.Remove(tb.Hash(1), 1) {
		t.Fatalf("Remove(1) = false")
	}
	if g, ok := tb.Lookup(tb.Hash(1), 1); ok {
		g.Release()
		t.Fatalf("Lookup(1) found after Remove")
	}
	mustInsert(t, tb, 1, 200)
}

func TestIterateRemoveDecision(t *testing.T) {
	tb := newTestTable(1, 8)
	for k := uint32(0); k < 6; k++ {
		mustInsert(t, tb, k, int(k))
	}
	tb.Iterate(func(k uint32, v *int) htcore.VisitDecision {
		if k%2 == 0 {
			return htcore.Remove
		}
		return htcore.Keep
	})
	for k := uint32(0); k < 6; k++ {
		g, ok := tb.Lookup(tb.Hash(k), k)
		want := k%2 != 0
		if ok != want {
			t.Fatalf("Lookup(%d) after Iterate = %v; want %v", k, ok, want)
		}
		if ok {
			g.Release()
		}
	}
}

func TestIterateSinceSkipsUnchangedChunks(t *testing.T) {
	tb := newTestTable(4, 4)
	mustInsert(t, tb, 1, 1) // chunk 1
	gens := make([]uint64, 4)
	visited := map[uint32]bool{}
	tb.IterateSince(gens, func(k uint32, v *int) htcore.VisitDecision {
		visited[k] = true
		return htcore.Keep
	})
	if !visited[1] {
		t.Fatalf("first IterateSince did not visit key 1")
	}

	visited = map[uint32]bool{}
	tb.IterateSince(gens, func(k uint32, v *int) htcore.VisitDecision {
		visited[k] = true
		return htcore.Keep
	})
	if len(visited) != 0 {
		t.Fatalf("second IterateSince visited %v; want none (no chunk changed)", visited)
	}

	mustInsert(t, tb, 5, 5) // chunk 1 again (5 mod 4 == 1)
	visited = map[uint32]bool{}
	tb.IterateSince(gens, func(k uint32, v *int) htcore.VisitDecision {
		visited[k] = true
		return htcore.Keep
	})
	if !visited[1] || !visited[5] {
		t.Fatalf("third IterateSince = %v; want both 1 and 5 revisited", visited)
	}
}

func TestDynamicTableUpdatePointerAndInsert(t *testing.T) {
	const n = 4
	tb, updater := NewUpdater[uint32, int](identityHasher{}, 4)
	size := CalculateSizeof[uint32, int](n, 4)
	buf := make([]byte, size)
	updater.UpdatePointer(unsafe.Pointer(&buf[0]), 1, n)

	if err := tb.Insert(tb.Hash(7), 7, 700); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	g, ok := tb.Lookup(tb.Hash(7), 7)
	if !ok || *g.Value() != 700 {
		t.Fatalf("Lookup(7) = %v, %v; want 700, true", g, ok)
	}
	g.Release()
	if tb.Generation() != 1 {
		t.Fatalf("Generation() = %d; want 1", tb.Generation())
	}
}

func TestDynamicTableEmptyBeforeUpdatePointer(t *testing.T) {
	tb, _ := NewUpdater[uint32, int](identityHasher{}, 4)
	if err := tb.Insert(0, 1, 1); err != htcore.ErrFull {
		t.Fatalf("Insert before UpdatePointer = %v; want ErrFull", err)
	}
}

func TestDynamicTableInsertOrUpdateAndClear(t *testing.T) {
	const n = 4
	tb, updater := NewUpdater[uint32, int](identityHasher{}, 4)
	size := CalculateSizeof[uint32, int](n, 4)
	buf := make([]byte, size)
	updater.UpdatePointer(unsafe.Pointer(&buf[0]), 1, n)

	if !tb.InsertOrUpdate(tb.Hash(3), 3, 30) {
		t.Fatalf("InsertOrUpdate(3) failed")
	}
	if !tb.InsertOrUpdate(tb.Hash(3), 3, 300) {
		t.Fatalf("InsertOrUpdate(3) update failed")
	}
	g, ok := tb.Lookup(tb.Hash(3), 3)
	if !ok || *g.Value() != 300 {
		t.Fatalf("Lookup(3) = %v, %v; want 300, true", g, ok)
	}
	g.Release()
	if snap := tb.Stats(); snap.Pairs != 1 {
		t.Fatalf("Pairs = %d; want 1", snap.Pairs)
	}

	tb.Clear()
	if snap := tb.Stats(); snap.Pairs != 0 {
		t.Fatalf("Pairs after Clear = %d; want 0", snap.Pairs)
	}
	if _, ok := tb.Lookup(tb.Hash(3), 3); ok {
		t.Fatalf("Lookup(3) found after Clear")
	}
}

func TestDynamicTableIterateAndIterateSince(t *testing.T) {
	const n = 1
	tb, updater := NewUpdater[uint32, int](identityHasher{}, 8)
	size := CalculateSizeof[uint32, int](n, 8)
	buf := make([]byte, size)
	updater.UpdatePointer(unsafe.Pointer(&buf[0]), 1, n)

	for k := uint32(0); k < 4; k++ {
		if err := tb.Insert(tb.Hash(k), k, int(k)); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}

	tb.Iterate(func(k uint32, v *int) htcore.VisitDecision {
		if k%2 == 0 {
			return htcore.Remove
		}
		return htcore.Keep
	})
	for k := uint32(0); k < 4; k++ {
		g, ok := tb.Lookup(tb.Hash(k), k)
		want := k%2 != 0
		if ok != want {
			t.Fatalf("Lookup(%d) after Iterate = %v; want %v", k, ok, want)
		}
		if ok {
			g.Release()
		}
	}

	gens := make([]uint64, n)
	visited := map[uint32]bool{}
	tb.IterateSince(gens, func(k uint32, v *int) htcore.VisitDecision {
		visited[k] = true
		return htcore.Keep
	})
	if len(visited) == 0 {
		t.Fatalf("IterateSince after prior mutation visited nothing")
	}

	visited = map[uint32]bool{}
	tb.IterateSince(gens, func(k uint32, v *int) htcore.VisitDecision {
		visited[k] = true
		return htcore.Keep
	})
	if len(visited) != 0 {
		t.Fatalf("second IterateSince visited %v; want none", visited)
	}
}

func mustInsert(t *testing.T, tb *Table[uint32, int], k uint32, v int) {
	t.Helper()
	if err := tb.Insert(tb.Hash(k), k, v); err != nil {
		t.Fatalf("Insert(%d): %v", k, err)
	}
}
