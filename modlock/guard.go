package modlock

import (
	"runtime"
	"sync/atomic"

	"github.com/yanet-dataplane/hashtable/htcore"
	"github.com/yanet-dataplane/hashtable/htcore/spinlock"
)

// Guard is Lookup's co-contract: a pointer into table memory plus the
// still-held chunk lock. Release before doing anything else with the
// table from the same goroutine — MOD-LOCK's lock is non-recursive.
type Guard[V any] struct {
	value   *V
	arg     *releaseArg
	cleanup runtime.Cleanup
}

type releaseArg struct {
	lock     *spinlock.Lock
	released atomic.Bool
}

func newGuard[V any](lock *spinlock.Lock, value *V) *Guard[V] {
	arg := &releaseArg{lock: lock}
	g := &Guard[V]{value: value, arg: arg}
	g.cleanup = runtime.AddCleanup(g, releaseFinalizer, arg)
	return g
}

func releaseFinalizer(arg *releaseArg) {
	if arg.released.CompareAndSwap(false, true) {
		arg.lock.Release()
		htcore.DropError("modlock: guard finalized without an explicit Release call", nil)
	}
}

func (g *Guard[V]) Value() *V { return g.value }

func (g *Guard[V]) Release() {
	if g.arg.released.CompareAndSwap(false, true) {
		g.arg.lock.Release()
	}
	g.cleanup.Stop()
}
