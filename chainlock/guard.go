package chainlock

import (
	"runtime"
	"sync/atomic"

	"github.com/yanet-dataplane/hashtable/htcore"
	"github.com/yanet-dataplane/hashtable/htcore/spinlock"
)

// Guard is the co-contract Lookup hands back: a pointer straight into
// table memory, held valid for as long as the caller keeps the
// returned chunk lock. Release unlocks the chunk; the value pointer
// must not be dereferenced afterward.
//
// A Guard obtained from a reentrant call (one made with WithToken
// against a chunk the caller already holds) does not itself own the
// lock — its Release is a no-op, since ownership stays with whichever
// call originally acquired it. Guard.Token works the same either way,
// so a borrowed Guard can still be threaded into a further nested call.
type Guard[V any] struct {
	value   *V
	lock    *spinlock.Lock
	arg     *releaseArg
	cleanup runtime.Cleanup
}

// releaseArg is passed to the finalizer separately from the Guard
// itself, since a cleanup closure that captured g directly would keep
// g reachable forever and the cleanup would never run. Guard.Release
// shares this same struct so both paths agree on whether the lock has
// already been released.
type releaseArg struct {
	lock     *spinlock.Lock
	released atomic.Bool
}

func newGuard[V any](lock *spinlock.Lock, value *V) *Guard[V] {
	arg := &releaseArg{lock: lock}
	g := &Guard[V]{value: value, lock: lock, arg: arg}
	g.cleanup = runtime.AddCleanup(g, releaseFinalizer, arg)
	return g
}

// newBorrowedGuard wraps a value found while reentering a chunk this
// goroutine already holds via a ChunkToken. It has no releaseArg of
// its own — Release does nothing, and no finalizer is registered,
// since there is nothing this Guard is responsible for unlocking.
func newBorrowedGuard[V any](lock *spinlock.Lock, value *V) *Guard[V] {
	return &Guard[V]{value: value, lock: lock}
}

func releaseFinalizer(arg *releaseArg) {
	if arg.released.CompareAndSwap(false, true) {
		arg.lock.Release()
		htcore.DropError("chainlock: guard finalized without an explicit Release call", nil)
	}
}

// Value returns the pointer into table memory this guard protects.
func (g *Guard[V]) Value() *V { return g.value }

// Token identifies the chunk lock this guard is backed by, for
// threading into a nested Insert, Lookup, or Remove call against the
// same table via WithToken.
func (g *Guard[V]) Token() ChunkToken { return ChunkToken{lock: g.lock} }

// Release unlocks the chunk backing this guard. Calling it more than
// once, or not at all, is safe — the second case is caught by the
// finalizer backstop, though every internal code path calls Release
// explicitly and the backstop should never fire in practice. Release
// on a borrowed Guard (see newBorrowedGuard) is a no-op.
func (g *Guard[V]) Release() {
	if g.arg == nil {
		return
	}
	if g.arg.released.CompareAndSwap(false, true) {
		g.arg.lock.Release()
	}
	g.cleanup.Stop()
}
