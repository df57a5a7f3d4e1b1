package urlkey

import (
	"crypto/sha1" //nolint:gosec // content address, not a security boundary
	"encoding/hex"
)

// DocumentIDLength is the length in characters of a document ID:
// a SHA-1 digest in lowercase hex encoding.
const DocumentIDLength = 40

// Identify derives the document ID for a raw URL.
//
// The ID is the lowercase hex SHA-1 of the canonical URL. The hash and
// encoding must stay byte-stable across releases because every stored
// document is keyed by the ID it was first saved under.
//
// Returns ErrInvalidURL when the URL cannot be normalized.
func Identify(raw string) (string, error) {
	canonical, err := Normalize(raw)
	if err != nil {
		return "", err
	}

	sum := sha1.Sum([]byte(canonical)) //nolint:gosec // content address, not a security boundary
	return hex.EncodeToString(sum[:]), nil
}

// ResolveID returns the document ID for a value that may be either a
// raw URL or an already-computed ID.
//
// A non-empty string of hex digits is treated as an ID and returned
// unchanged, so the same field or parameter can carry either form
// across the rest of the system without double-hashing. Anything else
// is treated as a raw URL and passed to Identify.
//
// A raw URL that consists entirely of hex digits would be mistaken for
// an ID. That ambiguity is accepted and confined to this one boundary
// function; real page URLs always contain a scheme separator.
func ResolveID(value string) (string, error) {
	if IsDocumentID(value) {
		return value, nil
	}
	return Identify(value)
}

// IsDocumentID reports whether s has the shape of a document ID: a
// non-empty string of hex digits in either case.
func IsDocumentID(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		isDigit := c >= '0' && c <= '9'
		isLowerHex := c >= 'a' && c <= 'f'
		isUpperHex := c >= 'A' && c <= 'F'
		if !isDigit && !isLowerHex && !isUpperHex {
			return false
		}
	}
	return true
}
