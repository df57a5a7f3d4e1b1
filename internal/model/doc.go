// Package model defines the core data structures used throughout pricewatch.
//
// This package contains the following main types:
//   - Item: A tracked product page, keyed by its document ID
//   - PricePoint: One observed price with currency and availability
//   - Snapshot: A fetched page with body, headers, and content hash
//   - Product: The fields a parser extracted from a snapshot
//   - CheckResult: The accumulated outcome of one price check
//
// Design decision: We separate models into their own package to avoid
// circular dependencies. Multiple packages (fetch, scrape, store, pipeline,
// report, server) need these types, so centralizing them prevents import
// cycles.
//
// The models are designed to be serializable to JSON for API responses and
// database storage.
package model
