package htcore

// CacheLineSize is the 64 B cache line sizeplan rounds chunk size
// estimates up to. The chunk structs themselves carry no padding to
// this size. 64 B covers every mainstream dataplane target (x86-64,
// arm64).
const CacheLineSize = 64

// MaxPairsPerChunk bounds pairs_per_chunk by the width of the 32-bit
// valid_mask every locked variant keeps alongside the pair array.
const MaxPairsPerChunk = 32

// MaxBurstKeys bounds MOD-ID32's lookup_burst batch size.
const MaxBurstKeys = 32

// NullExtendedID is the 0 sentinel meaning "no next extended chunk" —
// extended chunk IDs are 1-based so a zeroed chunk array starts fully
// unlinked.
const NullExtendedID uint32 = 0

// MaxExtendedChunks is the ceiling imposed by the 24-bit next-chunk-id
// field in the wire layout.
const MaxExtendedChunks = 1<<24 - 1

// PadTo64 returns the number of padding bytes needed to round n up to
// the next multiple of 64.
func PadTo64(n uintptr) uintptr {
	rem := n % CacheLineSize
	if rem == 0 {
		return 0
	}
	return CacheLineSize - rem
}
