// Package scrape provides per-site extraction parsers that turn a fetched
// page snapshot into product fields.
//
// # Architecture
//
// This package implements the Parser interface for each extraction strategy,
// allowing the pipeline to run whichever strategy a host's rule entry names
// in a uniform way.
//
// Design decision: Each extraction strategy is implemented as a separate type
// rather than one generic parser because:
//  1. Strategy-specific logic varies significantly (CSS vs XPath vs scripts)
//  2. Type safety - each parser can carry strategy-specific state
//  3. Easier testing - each strategy can be tested in isolation
//  4. Clearer error handling - strategy-specific errors are more descriptive
//
// # Supported Parsers
//
// The following parser identifiers are currently supported:
//   - selectors: CSS selectors resolved with goquery
//   - xpath: XPath expressions resolved with htmlquery
//   - script: a per-site JavaScript snippet run in an embedded interpreter
//   - auto: heuristic fallback using page metadata and price-like markup
//
// # Usage
//
// The Registry maps parser identifiers to implementations:
//
//	registry := scrape.NewRegistry()
//	product, err := registry.Parse(ctx, entry, snapshot)
//
// Price text is converted to minor units here; a price that cannot be
// parsed is an error, never a zero price.
package scrape
