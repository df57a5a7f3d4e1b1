// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard
// slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (admin tokens, cookies,
//     authorization headers)
//   - Configurable log levels with verbose mode support
//   - Size-rotated log files for long-running serve mode
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log
// output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Admin-Token)
//   - Secret values detected by pattern matching (passwords, JWTs, keys)
//   - Session identifiers and authentication tokens
//
// The serving layer compares an admin token on every mutating request;
// request logging runs through this handler so the token never reaches
// the terminal or the log file, even in verbose mode.
//
// Document IDs are 40-character hex strings that appear on nearly every
// log line; value patterns are chosen so they are never masked.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("tracking item",
//	    "id", "bf705e83e05bb9736592cc7742ef98c6f0afd988",
//	    "cookie", "session=abc123", // Will be sanitized
//	)
//
//	// Serve mode: rotated JSON file plus stdout
//	logger, closeLogs := log.NewRotatingLogger("pricewatch.log", verbose)
//	defer closeLogs()
package log
