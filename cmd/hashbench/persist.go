package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// openHistory opens (creating if necessary) a SQLite database at path
// for recording benchmark runs across invocations, through
// database/sql with the sqlite3 driver registered by blank import.
func openHistory(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			variant           TEXT NOT NULL,
			threads           INTEGER NOT NULL,
			ops_per_thread    INTEGER NOT NULL,
			chunk_count       INTEGER NOT NULL,
			extended_count    INTEGER NOT NULL,
			pairs_per_chunk   INTEGER NOT NULL,
			write_elapsed_ns  INTEGER NOT NULL,
			read_elapsed_ns   INTEGER NOT NULL,
			write_checksum    INTEGER NOT NULL,
			read_checksum     INTEGER NOT NULL,
			successful_writes INTEGER NOT NULL,
			successful_reads  INTEGER NOT NULL,
			ran_at            DATETIME DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func recordRun(db *sql.DB, r Result) error {
	_, err := db.Exec(`
		INSERT INTO runs (
			variant, threads, ops_per_thread, chunk_count, extended_count,
			pairs_per_chunk, write_elapsed_ns, read_elapsed_ns,
			write_checksum, read_checksum, successful_writes, successful_reads
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Variant, r.Threads, r.OpsPerThread, r.ChunkCount, r.ExtendedCount,
		r.PairsPerChunk, r.WriteElapsed.Nanoseconds(), r.ReadElapsed.Nanoseconds(),
		r.WriteChecksum, r.ReadChecksum, r.SuccessfulWrites, r.SuccessfulReads,
	)
	return err
}
