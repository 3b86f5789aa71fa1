package htcore

import "sync/atomic"

// Stats holds the four counters every variant reports. Each field lives
// on its own cache line so a hot writer bumping pairs never bounces the
// line a reader is polling for insertFailed — the same false-sharing
// discipline the chunk layout itself uses.
//
// Every variant, CHAIN included, updates these fields through the same
// atomic methods below.
type Stats struct {
	pairs              atomic.Uint64
	_                  [56]byte
	extendedChunksUsed atomic.Uint64
	_                  [56]byte
	longestChain       atomic.Uint64
	_                  [56]byte
	insertFailed       atomic.Uint64
	_                  [56]byte
}

// StatsSnapshot is a point-in-time read of Stats. It is intentionally a
// plain struct, not a pointer into the live counters — sampling stats
// is documented in spec as an approximate view, never a synchronization
// point.
type StatsSnapshot struct {
	Pairs              uint64
	ExtendedChunksUsed uint64

	// LongestChain is an opportunistic monotonic maximum. It may
	// over-read during concurrent shrinkage of a chain or under-read
	// during growth observed mid-update; treat it as STATS_STALE and
	// quiesce writers first if an exact value is required.
	LongestChain uint64
	InsertFailed uint64
}

func (s *Stats) addPairs(delta int64)              { addSigned(&s.pairs, delta) }
func (s *Stats) addExtendedChunksUsed(delta int64) { addSigned(&s.extendedChunksUsed, delta) }
func (s *Stats) incInsertFailed()                  { s.insertFailed.Add(1) }

// bumpLongestChain raises the recorded longest chain to n if n is
// larger, using compare-and-swap so concurrent updaters never lose a
// larger observation to a smaller, stale one.
func (s *Stats) bumpLongestChain(n uint64) {
	for {
		cur := s.longestChain.Load()
		if n <= cur {
			return
		}
		if s.longestChain.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (s *Stats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		Pairs:              s.pairs.Load(),
		ExtendedChunksUsed: s.extendedChunksUsed.Load(),
		LongestChain:       s.longestChain.Load(),
		InsertFailed:       s.insertFailed.Load(),
	}
}

func (s *Stats) reset() {
	s.pairs.Store(0)
	s.extendedChunksUsed.Store(0)
	s.longestChain.Store(0)
	s.insertFailed.Store(0)
}

// Snapshot returns the current counters. Exported so variant packages
// can expose it verbatim from their own Stats() method.
func (s *Stats) Snapshot() StatsSnapshot { return s.snapshot() }

// AddPairs adjusts the live pair count by delta (positive on insert,
// negative on remove). Exported for variant packages embedding Stats.
func (s *Stats) AddPairs(delta int64) { s.addPairs(delta) }

// AddExtendedChunksUsed adjusts the extended-chunk-in-use count.
func (s *Stats) AddExtendedChunksUsed(delta int64) { s.addExtendedChunksUsed(delta) }

// IncInsertFailed bumps the FULL counter by one.
func (s *Stats) IncInsertFailed() { s.incInsertFailed() }

// BumpLongestChain raises the recorded maximum chain length.
func (s *Stats) BumpLongestChain(n uint64) { s.bumpLongestChain(n) }

// Reset zeroes every counter. Called by Clear().
func (s *Stats) Reset() { s.reset() }

func addSigned(c *atomic.Uint64, delta int64) {
	if delta >= 0 {
		c.Add(uint64(delta))
		return
	}
	c.Add(^uint64(-delta) + 1) // two's-complement subtraction via Add
}
