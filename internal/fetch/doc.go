// Package fetch provides the HTTP client used to download product pages.
//
// This package wraps net/http with the behaviors a polite scraper needs:
// a per-host rate limiter, retry with exponential backoff for transient
// failures, a response body size cap, per-host cookie and header injection
// from the configuration file, and a redirect limit.
//
// Transient failures are network errors, timeouts, and 429/5xx responses.
// Anything deterministic (4xx other than 429, malformed URLs) fails
// immediately: retrying a 404 product page returns the same 404.
//
// The package is designed to be used with dependency injection - create a
// Client and pass it to components that need page fetching rather than
// using global state.
package fetch
