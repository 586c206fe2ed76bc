// Package database provides SQLite-based storage for pagescan.
//
// This package implements the ScrapeDB, which stores completed scrape
// reports so past runs can be listed and re-read via the history
// subcommand.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
