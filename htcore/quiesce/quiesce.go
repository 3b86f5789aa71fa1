// Package quiesce is an optional coordination helper for the dynamic
// MOD-LOCK flavor's Updater contract: spec.md requires the caller to
// invoke UpdatePointer "only during a quiescent interval" but
// deliberately gives the core no reader-writer epoch of its own. This
// package is that missing coordination primitive, offered so a caller
// isn't left inventing one from scratch — modlock never calls it
// internally.
//
// It is an instantiable, atomically-updated hot/activity flag, since a
// process may host more than one dynamic table needing independent
// coordination.
package quiesce

import (
	"sync/atomic"
	"time"
)

// Gate tracks whether writers are currently active against a table and
// exposes a bounded cooldown so a maintenance goroutine can wait for a
// safe window to call Updater.UpdatePointer.
type Gate struct {
	hot        atomic.Uint32
	lastHotNs  atomic.Int64
	cooldownNs int64
}

// NewGate returns a Gate that considers the table quiescent once
// cooldown has elapsed with no SignalActivity call.
func NewGate(cooldown time.Duration) *Gate {
	return &Gate{cooldownNs: cooldown.Nanoseconds()}
}

// SignalActivity marks the table as actively being written. Call this
// from every writer immediately before it mutates the table.
func (g *Gate) SignalActivity() {
	g.hot.Store(1)
	g.lastHotNs.Store(time.Now().UnixNano())
}

// Quiescent reports whether cooldown has elapsed since the last
// SignalActivity call. A true result is a hint, not a guarantee — the
// caller is still responsible for actually excluding concurrent
// writers before calling UpdatePointer, exactly as spec.md requires.
func (g *Gate) Quiescent() bool {
	if g.hot.Load() == 0 {
		return true
	}
	if time.Now().UnixNano()-g.lastHotNs.Load() > g.cooldownNs {
		g.hot.Store(0)
		return true
	}
	return false
}
