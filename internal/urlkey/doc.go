// Package urlkey turns arbitrary product-page URLs into stable identities.
//
// # Architecture
//
// The package implements two pure transforms that the rest of pricewatch
// builds on:
//
//   - Normalize: collapses the many spellings of the same page URL into a
//     single canonical form
//   - Identify: derives a fixed-length document ID from the canonical form
//
// Design decision: identity is content-addressed (a hash of the canonical
// URL) rather than assigned (an auto-increment or UUID) because:
//  1. The same page must map to the same ID no matter which code path,
//     process, or machine sees it first
//  2. IDs survive restarts and database rebuilds without coordination
//  3. Callers can recompute the ID from the URL alone, so lookups never
//     need a reverse index
//
// # Canonical form
//
// A canonical URL is always https, has a lowercase host with no leading
// "www.", no fragment, no trailing slash, and no query string. Query
// parameters are treated as tracking noise and removed unconditionally:
// two URLs that differ only in their query string denote the same page.
//
// # Concurrency
//
// All functions are pure and hold no state. They are safe to call from
// any number of goroutines without coordination.
package urlkey
