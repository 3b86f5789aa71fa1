package main

import (
	"time"

	"github.com/sugawarayuuta/sonnet"
)

// Result is one benchmark run's outcome, mirroring the fields
// hashtable_benchmark.cpp prints per run: elapsed time, checksums
// accumulated independently by the write and read passes (which must
// match if every written value survived unmodified), and success
// counts against the requested op total.
type Result struct {
	Variant          string        `json:"variant"`
	Threads          int           `json:"threads"`
	OpsPerThread     int           `json:"ops_per_thread"`
	ChunkCount       uint32        `json:"chunk_count"`
	ExtendedCount    uint32        `json:"extended_count,omitempty"`
	PairsPerChunk    uint32        `json:"pairs_per_chunk"`
	WriteElapsed     time.Duration `json:"write_elapsed_ns"`
	ReadElapsed      time.Duration `json:"read_elapsed_ns"`
	WriteChecksum    uint64        `json:"write_checksum"`
	ReadChecksum     uint64        `json:"read_checksum"`
	SuccessfulWrites int           `json:"successful_writes"`
	SuccessfulReads  int           `json:"successful_reads"`
	TotalOps         int           `json:"total_ops"`
}

// ChecksumsMatch reports whether the write and read passes observed
// the same data, the benchmark's basic correctness check.
func (r Result) ChecksumsMatch() bool { return r.WriteChecksum == r.ReadChecksum }

// MarshalJSON encodes r using the sonnet fast-JSON library rather than
// encoding/json.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return sonnet.Marshal(alias(r))
}
