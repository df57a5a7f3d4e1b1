// Package rules holds the per-host rule table that decides which hosts
// pricewatch will track and how their pages are parsed.
//
// # Architecture
//
// The table is loaded once at startup from a YAML source and is
// immutable afterward, so any number of goroutines can read it without
// locking. A missing or malformed source is a startup failure: the
// process must not begin serving or checking with a partial table.
//
// Design decision: The table is passed explicitly to the components
// that consult it rather than exposed as package-level state because:
//  1. Tests can build isolated tables from fabricated sources
//  2. The construction-then-read-only lifecycle is visible in the types
//  3. A future hot-reload can swap whole snapshots atomically
//
// # Admission gate
//
// IsSupportedURL is the admission check performed before any fetch,
// scrape, or persistence work. Membership is an exact match of the
// canonical hostname against table keys; no wildcard or suffix logic.
package rules
