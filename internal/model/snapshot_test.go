package model

import (
	"testing"
)

func TestSnapshotComputeHash(t *testing.T) {
	t.Parallel()

	t.Run("known body hashes to known digest", func(t *testing.T) {
		t.Parallel()

		s := &Snapshot{Body: []byte("hello")}
		s.ComputeHash()

		want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
		if s.Hash != want {
			t.Errorf("expected %s, got %s", want, s.Hash)
		}
	})

	t.Run("empty body clears hash", func(t *testing.T) {
		t.Parallel()

		s := &Snapshot{Hash: "stale"}
		s.ComputeHash()

		if s.Hash != "" {
			t.Errorf("expected empty hash, got %s", s.Hash)
		}
	})

	t.Run("same body yields same hash", func(t *testing.T) {
		t.Parallel()

		a := &Snapshot{Body: []byte("<html><body>price page</body></html>")}
		b := &Snapshot{Body: []byte("<html><body>price page</body></html>")}
		a.ComputeHash()
		b.ComputeHash()

		if a.Hash != b.Hash {
			t.Errorf("expected equal hashes, got %s and %s", a.Hash, b.Hash)
		}
	})
}

func TestSnapshotTruncateBody(t *testing.T) {
	t.Parallel()

	t.Run("oversized body is capped", func(t *testing.T) {
		t.Parallel()

		s := &Snapshot{Body: make([]byte, MaxBodySize+1)}
		s.TruncateBody()

		if len(s.Body) != MaxBodySize {
			t.Errorf("expected %d bytes, got %d", MaxBodySize, len(s.Body))
		}
	})

	t.Run("small body is untouched", func(t *testing.T) {
		t.Parallel()

		s := &Snapshot{Body: []byte("small")}
		s.TruncateBody()

		if string(s.Body) != "small" {
			t.Errorf("expected body unchanged, got %q", s.Body)
		}
	})
}

func TestSnapshotGetHeader(t *testing.T) {
	t.Parallel()

	s := &Snapshot{
		Headers: map[string][]string{
			"Content-Type":  {"text/html; charset=utf-8"},
			"Cache-Control": {"no-cache", "no-store"},
		},
	}

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "single value", header: "Content-Type", want: "text/html; charset=utf-8"},
		{name: "first of multiple values", header: "Cache-Control", want: "no-cache"},
		{name: "missing header", header: "X-Absent", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := s.GetHeader(tt.header); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSnapshotIsHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		want        bool
	}{
		{name: "plain html", contentType: "text/html", want: true},
		{name: "html with charset", contentType: "text/html; charset=utf-8", want: true},
		{name: "xhtml", contentType: "application/xhtml+xml", want: true},
		{name: "json", contentType: "application/json", want: false},
		{name: "empty", contentType: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &Snapshot{ContentType: tt.contentType}
			if got := s.IsHTML(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
