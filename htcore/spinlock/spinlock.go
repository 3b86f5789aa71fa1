// Package spinlock provides the non-recursive, unbounded-spin lock
// every locked table variant embeds one of per chunk (MOD-LOCK) or per
// primary chunk plus one for the extended-chunk pool (CHAIN-LOCK).
//
// There is no sleep, no yield, no async boundary — only a CAS retry
// loop with a per-architecture relax hint — because these locks sit on
// the packet-processing hot path where a blocking primitive would
// invite the scheduler into a latency budget that has no room for it.
package spinlock

import "sync/atomic"

const (
	unlocked = 0
	locked   = 1
)

// Lock is a spinlock held in a single 4-byte word. Its zero value is
// unlocked, matching a zeroed shared-memory chunk needing no explicit
// initialization.
type Lock struct {
	state atomic.Uint32
}

// Acquire spins until the lock is held. Lock acquisition cannot fail —
// per spec, if that is ever unacceptable the caller must ensure no
// holder can stall while holding it.
func (l *Lock) Acquire() {
	for !l.state.CompareAndSwap(unlocked, locked) {
		for l.state.Load() != unlocked {
			cpuRelax()
		}
	}
}

// TryAcquire attempts to take the lock without spinning, reporting
// whether it succeeded.
func (l *Lock) TryAcquire() bool {
	return l.state.CompareAndSwap(unlocked, locked)
}

// Release unlocks. Calling Release on an unlocked Lock, or from a
// goroutine that does not hold it, corrupts the lock state — the same
// contract a raw pthread spinlock gives its caller.
func (l *Lock) Release() {
	l.state.Store(unlocked)
}
