// Package main provides the entry point for the pricewatch CLI.
//
// Pricewatch tracks product pages on supported online shops and records
// their prices over time. Every page is identified by the SHA-1 of its
// canonical URL, so re-tracking a page never duplicates it.
//
// Usage:
//
//	pricewatch track <url>
//	pricewatch check
//	pricewatch serve
//
// See --help for all available options.
package main

// main is the entry point for pricewatch.
func main() {
	Execute()
}
