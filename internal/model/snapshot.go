package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// MaxBodySize is the maximum size of a fetched page body to keep.
// Larger bodies are truncated to this size before parsing.
const MaxBodySize = 5 * 1024 * 1024 // 5 MB

// Snapshot is one fetched page.
//
// Design decision: We keep the raw body and a content hash on the
// snapshot because:
//  1. Parsers re-read the body without refetching
//  2. The hash detects unchanged pages so stores can skip writes
//  3. Failed extractions can be diagnosed from the exact bytes seen
type Snapshot struct {
	// URL is the canonical URL the fetch was issued for.
	URL string `json:"url"`

	// FinalURL is the URL after redirects; equal to URL when none.
	FinalURL string `json:"final_url,omitempty"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Headers contains the HTTP response headers, canonicalized keys.
	Headers map[string][]string `json:"headers,omitempty"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type,omitempty"`

	// Body is the raw response body, capped at MaxBodySize.
	Body []byte `json:"-"` // Excluded from JSON to keep payloads small

	// Hash is the SHA-256 hash of the body, for change detection.
	Hash string `json:"hash,omitempty"`

	// FetchedAt is when the response was received.
	FetchedAt time.Time `json:"fetched_at"`
}

// ComputeHash calculates and sets the SHA-256 hash of the body.
// Call after setting Body.
func (s *Snapshot) ComputeHash() {
	if len(s.Body) == 0 {
		s.Hash = ""
		return
	}

	sum := sha256.Sum256(s.Body)
	s.Hash = hex.EncodeToString(sum[:])
}

// TruncateBody enforces the MaxBodySize cap. Call after setting Body.
func (s *Snapshot) TruncateBody() {
	if len(s.Body) > MaxBodySize {
		s.Body = s.Body[:MaxBodySize]
	}
}

// GetHeader returns the first value of the named header, or "" when
// absent. Names must be in Go's canonical header form.
func (s *Snapshot) GetHeader(name string) string {
	if values, ok := s.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// IsHTML reports whether the content type indicates an HTML page.
func (s *Snapshot) IsHTML() bool {
	return strings.HasPrefix(s.ContentType, "text/html") ||
		strings.HasPrefix(s.ContentType, "application/xhtml+xml")
}
