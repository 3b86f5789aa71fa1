package chain

// maxPairsPerChunk is the largest legal pairs_per_chunk spec.md
// enumerates (1, 4, 8, or 16), and the size every primary chunk's pair
// array is fixed at regardless of the table's configured
// pairsPerChunk. Go has no const-generic array length, so a runtime
// "pairs_per_chunk" cannot resize the embedded array the way a C++
// template parameter would; fixing it at the enumerated maximum and
// simply leaving the tail slots permanently invalid for a
// smaller-than-16 configuration keeps every chunk a true
// array-of-structs (valid mask, pairs, and chain link sharing one
// cache line) instead of degrading to parallel slices that would
// scatter a chunk's hot fields across separate allocations.
const maxPairsPerChunk = 16

// maxPairsPerExtendedChunk is fixed by the 8-bit keyValids field, per
// spec.md §3/§6 ("pairs_per_extended_chunk — 4 (fixed by 8-bit
// keyValids)"). Only the low 4 bits of keyValids are ever used.
const maxPairsPerExtendedChunk = 4

// pair is one (key, value) slot. Go's own struct layout algorithm
// already aligns Value after Key on its natural boundary the way
// spec.md's pair layout describes; unlike the C++ original this needs
// no manual padding field, since Go — unlike C — guarantees a
// deterministic, alignment-correct layout for any exported struct
// without #pragma pack help.
type pair[K comparable, V any] struct {
	key   K
	value V
}

// primaryChunk is the chunk selected by hash(key) mod N. validMask bit
// i set means pairs[i] is live; the tail (maxPairsPerChunk -
// pairsPerChunk) slots are permanently unused for a table configured
// below the maximum.
//
// CHAIN carries no lock field — spec.md's layout table marks the lock
// "present in locked variants" only, and CHAIN's whole concurrency
// contract is the caller's external synchronization.
type primaryChunk[K comparable, V any] struct {
	validMask    uint32
	nextExtended uint32 // 1-based index into the extended pool, 0 = none
	pairs        [maxPairsPerChunk]pair[K, V]
}

// extendedChunk is an overflow chunk appended to a primary chunk's
// chain. keyValids only ever uses its low 4 bits; the field is a full
// byte to match spec.md's on-wire "[keyValids:1B]" layout.
type extendedChunk[K comparable, V any] struct {
	nextExtended uint32 // 1-based; 0 = end of chain
	keyValids    uint8
	pairs        [maxPairsPerExtendedChunk]pair[K, V]
}

