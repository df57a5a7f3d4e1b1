// Package server exposes the tracker over HTTP.
//
// The API mirrors the CLI: tracking items, listing them, reading price
// history, and running check cycles. Mutating routes require the admin
// token from the startup configuration; read routes are open. Every
// response that references an item carries an absolute link built from
// the active hosting region's base URL.
package server
