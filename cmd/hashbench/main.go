// Command hashbench drives writer/reader goroutine stress against the
// concurrent hashtable variants, mirroring hashtable_benchmark.cpp's
// disjoint-key-range, checksum-verified methodology, and reports
// results as human-readable text or JSON, optionally persisted to a
// SQLite run-history database for trend tracking across invocations.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/yanet-dataplane/hashtable/htcore"
)

// Config is the fully-resolved set of benchmark parameters, after
// flag parsing.
type Config struct {
	Variant       string
	N             uint32
	Extended      uint32
	PairsPerChunk uint32
	Threads       int
	OpsPerThread  int
}

func main() {
	variant := pflag.StringP("variant", "v", "chainlock", "table variant to benchmark: chainlock or modlock")
	n := pflag.Uint32P("chunks", "n", 1024, "primary chunk count")
	extended := pflag.Uint32("extended", 256, "extended chunk pool size (chainlock only)")
	pairs := pflag.Uint32P("pairs", "p", 8, "pairs per chunk")
	threads := pflag.IntP("threads", "t", 8, "writer/reader goroutine count")
	opsPerThread := pflag.Int("ops", 10_000, "operations per thread")
	jsonOutput := pflag.Bool("json", false, "emit the result as JSON instead of text")
	historyPath := pflag.String("history", "", "optional path to a SQLite run-history database")
	pflag.Parse()

	cfg := Config{
		Variant:       *variant,
		N:             *n,
		Extended:      *extended,
		PairsPerChunk: *pairs,
		Threads:       *threads,
		OpsPerThread:  *opsPerThread,
	}

	var result Result
	switch cfg.Variant {
	case "chainlock":
		result = runChainLock(cfg)
	case "modlock":
		result = runModLock(cfg)
	default:
		fmt.Fprintf(os.Stderr, "hashbench: unknown variant %q (want chainlock or modlock)\n", cfg.Variant)
		os.Exit(2)
	}

	if *historyPath != "" {
		db, err := openHistory(*historyPath)
		if err != nil {
			htcore.DropError("hashbench: opening history database", err)
		} else {
			if err := recordRun(db, result); err != nil {
				htcore.DropError("hashbench: recording run", err)
			}
			db.Close()
		}
	}

	if *jsonOutput {
		b, err := result.MarshalJSON()
		if err != nil {
			log.Fatalf("hashbench: marshaling result: %v", err)
		}
		os.Stdout.Write(b)
		os.Stdout.Write([]byte("\n"))
		return
	}

	printResult(result)
}

func printResult(r Result) {
	fmt.Printf("variant:            %s\n", r.Variant)
	fmt.Printf("threads:            %d\n", r.Threads)
	fmt.Printf("ops per thread:     %d\n", r.OpsPerThread)
	fmt.Printf("chunk count:        %d\n", r.ChunkCount)
	if r.ExtendedCount > 0 {
		fmt.Printf("extended count:     %d\n", r.ExtendedCount)
	}
	fmt.Printf("pairs per chunk:    %d\n", r.PairsPerChunk)
	fmt.Printf("write elapsed:      %s\n", r.WriteElapsed)
	fmt.Printf("read elapsed:       %s\n", r.ReadElapsed)
	fmt.Printf("successful writes:  %d/%d\n", r.SuccessfulWrites, r.TotalOps)
	fmt.Printf("successful reads:   %d/%d\n", r.SuccessfulReads, r.TotalOps)
	fmt.Printf("write checksum:     %d\n", r.WriteChecksum)
	fmt.Printf("read checksum:      %d\n", r.ReadChecksum)
	if r.ChecksumsMatch() {
		fmt.Println("checksums:          MATCH")
	} else {
		fmt.Println("checksums:          MISMATCH")
		os.Exit(1)
	}
}
