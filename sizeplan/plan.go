package sizeplan

import (
	"fmt"
	"unsafe"

	"github.com/yanet-dataplane/hashtable/htcore"
)

// Plan is the byte-footprint breakdown for one hashtable configuration.
type Plan struct {
	PairBytes          uintptr
	PrimaryChunkBytes  uintptr // one primary chunk, cache-line padded
	ExtendedChunkBytes uintptr // one extended chunk, chain variants only
	PrimaryChunks      uint32
	ExtendedChunks     uint32
	TotalBytes         uintptr
}

// Sizeof reports the byte footprint of an N-chunk table with the given
// pairsPerChunk and extended-chunk count, for a (K, V) pair, without
// constructing one — the same question value_size_calculator.cpp
// answered for a fixed set of C++ value structs, generalized here to
// any K/V pair a caller wants to plan for.
//
// PairBytes is the unsafe.Sizeof of one pair. PrimaryChunkBytes and
// ExtendedChunkBytes are computed from the pair size and the chunk
// header words, each rounded up to a cache-line multiple, and
// TotalBytes sums those rounded sizes. The chunk structs in chain,
// chainlock, modid32 and modlock carry no padding fields, so their
// unsafe.Sizeof is not rounded to 64 bytes and can differ from these
// estimates.
func Sizeof[K comparable, V any](n, extended uint32, pairsPerChunk uint32) Plan {
	var pair struct {
		Key   K
		Value V
	}
	pairBytes := unsafe.Sizeof(pair)

	// A primary chunk is a valid-mask word, a chain-link word, and
	// pairsPerChunk pairs, rounded up to the cache line.
	primaryRaw := uintptr(8) + pairBytes*uintptr(pairsPerChunk)
	primaryChunkBytes := primaryRaw + htcore.PadTo64(primaryRaw)

	// An extended chunk always holds exactly 4 pairs (fixed by the
	// 8-bit keyValids field), plus one chain-link word and one byte
	// for the valids field itself.
	extendedRaw := uintptr(5) + pairBytes*4
	extendedChunkBytes := extendedRaw + htcore.PadTo64(extendedRaw)

	total := primaryChunkBytes*uintptr(n) + extendedChunkBytes*uintptr(extended)

	return Plan{
		PairBytes:          pairBytes,
		PrimaryChunkBytes:  primaryChunkBytes,
		ExtendedChunkBytes: extendedChunkBytes,
		PrimaryChunks:      n,
		ExtendedChunks:     extended,
		TotalBytes:         total,
	}
}

// VerifyLayout checks that pairsPerChunk is in (0, 32] and that one
// primary chunk of (K, V) pairs, as Sizeof estimates it, spans no more
// than 16 cache lines. It does not check alignment or that any chunk
// struct's in-memory size is a multiple of 64 bytes. Go has no
// static_assert, so a configuration that would blow a chunk past a
// sane multi-cache-line footprint is instead caught here, at plan
// time, rather than silently accepted and only noticed later as
// surprising memory pressure.
func VerifyLayout[K comparable, V any](pairsPerChunk uint32) error {
	if pairsPerChunk == 0 || pairsPerChunk > 32 {
		return fmt.Errorf("sizeplan: pairsPerChunk %d out of range (0, 32]", pairsPerChunk)
	}
	plan := Sizeof[K, V](1, 0, pairsPerChunk)
	const maxReasonableChunkBytes = 16 * htcore.CacheLineSize
	if plan.PrimaryChunkBytes > maxReasonableChunkBytes {
		return fmt.Errorf("sizeplan: chunk of %d pairs at %d bytes/pair spans %d bytes (%d cache lines) — reconsider pairsPerChunk or V's size",
			pairsPerChunk, plan.PairBytes, plan.PrimaryChunkBytes, plan.PrimaryChunkBytes/htcore.CacheLineSize)
	}
	return nil
}
