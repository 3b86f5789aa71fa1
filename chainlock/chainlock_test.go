package chainlock

import (
	"sync"
	"testing"

	"github.com/yanet-dataplane/hashtable/htcore"
)

type identityHasher struct{}

func (identityHasher) Hash(k uint32) uint32 { return k }

func newTestTable(n, extended, pairsPerChunk uint32) *Table[uint32, int] {
	return New[uint32, int](Config[uint32]{
		N:             n,
		Extended:      extended,
		PairsPerChunk: pairsPerChunk,
		Hasher:        identityHasher{},
	})
}

func TestInsertLookupRelease(t *testing.T) {
	tb := newTestTable(4, 4, 4)
	if err := tb.Insert(1, 100); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	g, ok := tb.Lookup(1)
	if !ok {
		t.Fatalf("Lookup(1) not found")
	}
	if *g.Value() != 100 {
		t.Fatalf("Guard.Value() = %d; want 100", *g.Value())
	}
	g.Release()

	if g2, ok := tb.Lookup(2); ok {
		g2.Release()
		t.Fatalf("Lookup(2) unexpectedly found")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	tb := newTestTable(1, 1, 4)
	mustInsert(t, tb, 1, 1)
	g, ok := tb.Lookup(1)
	if !ok {
		t.Fatalf("Lookup(1) not found")
	}
	g.Release()
	g.Release() // must not double-unlock or panic

	// The chunk lock must be free for further use.
	if err := tb.Insert(2, 2); err != nil {
		t.Fatalf("Insert after double Release: %v", err)
	}
}

func TestSweepRemovesRejectedPairs(t *testing.T) {
	tb := newTestTable(1, 2, 1)
	for k := uint32(0); k < 6; k++ {
		mustInsert(t, tb, k, int(k))
	}
	tb.Sweep(func(k uint32, v *int, tok ChunkToken) bool {
		return k%2 != 0
	})
	for k := uint32(0); k < 6; k++ {
		g, ok := tb.Lookup(k)
		if ok {
			g.Release()
		}
		wantOK := k%2 != 0
		if ok != wantOK {
			t.Fatalf("Lookup(%d) after Sweep = %v; want %v", k, ok, wantOK)
		}
	}
}

// TestSweepCallbackReentersSameChunkWithoutDeadlock exercises the
// reentrancy Sweep's ChunkToken exists for: a keep callback that, from
// inside the already-held chunk lock, looks up and inserts other keys
// hashing to the very same chunk. Without WithToken this would spin
// against a lock this goroutine already holds.
func TestSweepCallbackReentersSameChunkWithoutDeadlock(t *testing.T) {
	tb := newTestTable(1, 2, 4)
	for k := uint32(0); k < 3; k++ {
		mustInsert(t, tb, k, int(k)*10)
	}

	var sawPeer bool
	tb.Sweep(func(k uint32, v *int, tok ChunkToken) bool {
		if k == 0 {
			g, ok := tb.Lookup(1, WithToken(tok))
			if !ok {
				t.Fatalf("reentrant Lookup(1) from Sweep callback: not found")
			}
			sawPeer = *g.Value() == 10
			g.Release() // no-op: this Guard is borrowed, not owned

			if err := tb.Insert(99, 990, WithToken(tok)); err != nil {
				t.Fatalf("reentrant Insert(99) from Sweep callback: %v", err)
			}
		}
		return true
	})
	if !sawPeer {
		t.Fatalf("reentrant Lookup(1) did not observe the expected value")
	}
	g, ok := tb.Lookup(99)
	if !ok || *g.Value() != 990 {
		t.Fatalf("Lookup(99) after Sweep = %v, %v; want 990, true", g, ok)
	}
	g.Release()
}

// TestReentrantLookupViaGuardToken exercises the non-Sweep reentry
// path: a Guard from one Lookup threaded via its Token into a second
// Lookup against the same chunk.
func TestReentrantLookupViaGuardToken(t *testing.T) {
	tb := newTestTable(1, 1, 4)
	mustInsert(t, tb, 1, 100)
	mustInsert(t, tb, 2, 200)

	g1, ok := tb.Lookup(1)
	if !ok {
		t.Fatalf("Lookup(1) not found")
	}
	g2, ok := tb.Lookup(2, WithToken(g1.Token()))
	if !ok {
		t.Fatalf("reentrant Lookup(2) not found")
	}
	if *g2.Value() != 200 {
		t.Fatalf("reentrant Lookup(2) = %d; want 200", *g2.Value())
	}
	g2.Release() // no-op, borrowed
	g1.Release() // releases the chunk lock for real
}

func TestConcurrentWritersDistinctKeysAllSucceed(t *testing.T) {
	const writers = 8
	const perWriter = 200
	tb := newTestTable(16, uint32(writers*perWriter), 4)

	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		w := w
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				k := uint32(w*perWriter + i)
				if err := tb.Insert(k, int(k)); err != nil {
					t.Errorf("writer %d: Insert(%d): %v", w, k, err)
				}
			}
		}()
	}
	wg.Wait()

	for w := 0; w < writers; w++ {
		for i := 0; i < perWriter; i++ {
			k := uint32(w*perWriter + i)
			g, ok := tb.Lookup(k)
			if !ok {
				t.Fatalf("Lookup(%d) not found after concurrent inserts", k)
			}
			if *g.Value() != int(k) {
				t.Fatalf("Lookup(%d) = %d; want %d", k, *g.Value(), k)
			}
			g.Release()
		}
	}

	snap := tb.Stats()
	if snap.Pairs != uint64(writers*perWriter) {
		t.Fatalf("Pairs = %d; want %d", snap.Pairs, writers*perWriter)
	}
}

func TestClearWhileIdle(t *testing.T) {
	tb := newTestTable(4, 4, 4)
	for k := uint32(0); k < 4; k++ {
		mustInsert(t, tb, k, int(k))
	}
	tb.Clear()
	if snap := tb.Stats(); snap != (htcore.StatsSnapshot{}) {
		t.Fatalf("Stats after Clear = %+v; want zero value", snap)
	}
	for k := uint32(0); k < 4; k++ {
		if g, ok := tb.Lookup(k); ok {
			g.Release()
			t.Fatalf("Lookup(%d) found a key after Clear", k)
		}
	}
}

func mustInsert(t *testing.T, tb *Table[uint32, int], k uint32, v int) {
	t.Helper()
	if err := tb.Insert(k, v); err != nil {
		t.Fatalf("Insert(%d): %v", k, err)
	}
}
