// Package store provides SQLite-based storage for pricewatch.
//
// This package implements the Store, which keeps:
//   - Tracked items keyed by document ID, with the full item as JSON
//   - Append-only price history per item
//   - Check records for skipping recently checked items
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package store
