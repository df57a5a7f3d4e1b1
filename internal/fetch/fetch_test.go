package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pricewatch/pricewatch/internal/config"
)

// fastRetryOptions returns options that keep retry tests quick.
func fastRetryOptions(extra ...Option) []Option {
	opts := []Option{
		WithRetryDelay(time.Millisecond, 5*time.Millisecond),
		WithHostRateLimit(1000),
	}
	return append(opts, extra...)
}

// TestClientFetch_Success tests a plain successful fetch.
func TestClientFetch_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Widget</title></head><body>19.99</body></html>`)) //nolint:errcheck
	}))
	defer server.Close()

	client := New(fastRetryOptions(WithHTTPClient(server.Client()))...)

	snapshot, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", snapshot.StatusCode)
	}
	if !strings.Contains(string(snapshot.Body), "Widget") {
		t.Errorf("expected body to contain page content, got %q", string(snapshot.Body))
	}
	if snapshot.Hash == "" {
		t.Error("expected content hash to be computed")
	}
	if !snapshot.IsHTML() {
		t.Errorf("expected HTML content type, got %q", snapshot.ContentType)
	}
	if snapshot.URL != server.URL {
		t.Errorf("expected URL %q, got %q", server.URL, snapshot.URL)
	}
	if snapshot.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be set")
	}
}

// TestClientFetch_SendsRequestHeaders tests that the client identifies
// itself and applies per-host configuration.
func TestClientFetch_SendsRequestHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotCookie, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCookie = r.Header.Get("Cookie")
		gotLang = r.Header.Get("Accept-Language")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	hostConfigs := &config.File{
		Hosts: map[string]config.HostConfig{
			"127.0.0.1": {
				Cookie:  "consent=yes",
				Headers: map[string]string{"Accept-Language": "en-GB"},
			},
		},
	}

	client := New(fastRetryOptions(
		WithHTTPClient(server.Client()),
		WithUserAgent("pricewatch-test/1.0"),
		WithHostConfigs(hostConfigs),
	)...)

	if _, err := client.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotUA != "pricewatch-test/1.0" {
		t.Errorf("expected custom user agent, got %q", gotUA)
	}
	if gotCookie != "consent=yes" {
		t.Errorf("expected configured cookie, got %q", gotCookie)
	}
	if gotLang != "en-GB" {
		t.Errorf("expected per-host header to override default, got %q", gotLang)
	}
}

// TestClientFetch_RetriesTransientFailures tests that 5xx responses are
// retried and the fetch eventually succeeds.
func TestClientFetch_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`<html><body>ok</body></html>`)) //nolint:errcheck
	}))
	defer server.Close()

	client := New(fastRetryOptions(
		WithHTTPClient(server.Client()),
		WithMaxRetries(3),
	)...)

	snapshot, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.StatusCode != http.StatusOK {
		t.Errorf("expected eventual 200, got %d", snapshot.StatusCode)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

// TestClientFetch_ExhaustsRetries tests that a persistently failing host
// returns ErrMaxRetriesExceeded wrapping the last status error.
func TestClientFetch_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(fastRetryOptions(
		WithHTTPClient(server.Client()),
		WithMaxRetries(2),
	)...)

	_, err := client.Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Fatalf("expected ErrMaxRetriesExceeded, got %v", err)
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected wrapped StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected wrapped 502, got %d", statusErr.StatusCode)
	}

	// Initial attempt plus two retries
	if got := attempts.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

// TestClientFetch_NoRetryOnClientError tests that deterministic 4xx
// responses fail immediately.
func TestClientFetch_NoRetryOnClientError(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New(fastRetryOptions(
		WithHTTPClient(server.Client()),
		WithMaxRetries(3),
	)...)

	_, err := client.Fetch(context.Background(), server.URL)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", statusErr.StatusCode)
	}
	if errors.Is(err, ErrMaxRetriesExceeded) {
		t.Error("404 must not be reported as exhausted retries")
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("expected exactly 1 attempt for a 404, got %d", got)
	}
}

// TestClientFetch_CapsBodySize tests the response body cap.
func TestClientFetch_CapsBodySize(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("x", 64*1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(big)) //nolint:errcheck
	}))
	defer server.Close()

	client := New(fastRetryOptions(
		WithHTTPClient(server.Client()),
		WithMaxBodySize(1024),
	)...)

	snapshot, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot.Body) != 1024 {
		t.Errorf("expected body capped at 1024 bytes, got %d", len(snapshot.Body))
	}
}

// TestClientFetch_FollowsRedirects tests that redirects are followed and
// the final URL is recorded.
func TestClientFetch_FollowsRedirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>moved</body></html>`)) //nolint:errcheck
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(fastRetryOptions(WithHTTPClient(server.Client()))...)

	snapshot, err := client.Fetch(context.Background(), server.URL+"/old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.URL != server.URL+"/old" {
		t.Errorf("expected requested URL preserved, got %q", snapshot.URL)
	}
	if !strings.HasSuffix(snapshot.FinalURL, "/new") {
		t.Errorf("expected final URL after redirect, got %q", snapshot.FinalURL)
	}
}

// TestClientFetch_ContextCancelled tests that a cancelled context aborts
// the fetch without retries.
func TestClientFetch_ContextCancelled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(fastRetryOptions(WithHTTPClient(server.Client()))...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Fetch(ctx, server.URL); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

// TestClientFetch_InvalidURL tests that an unparseable URL fails fast.
func TestClientFetch_InvalidURL(t *testing.T) {
	t.Parallel()

	client := New(fastRetryOptions()...)

	if _, err := client.Fetch(context.Background(), "://missing-scheme"); err == nil {
		t.Fatal("expected error for invalid URL")
	}
}

// TestLimiterFor tests that limiters are shared per host.
func TestLimiterFor(t *testing.T) {
	t.Parallel()

	client := New()

	a := client.limiterFor("books.toscrape.com")
	b := client.limiterFor("books.toscrape.com")
	other := client.limiterFor("scrapeme.live")

	if a != b {
		t.Error("expected the same limiter for repeated lookups of one host")
	}
	if a == other {
		t.Error("expected distinct limiters for distinct hosts")
	}
}

// timeoutError implements net.Error for classifier tests.
type timeoutError struct{}

func (timeoutError) Error() string   { return "synthetic timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// TestIsRetryable tests the transient-failure classifier.
func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not retryable",
			err:  nil,
			want: false,
		},
		{
			name: "429 is retryable",
			err:  &StatusError{StatusCode: http.StatusTooManyRequests, URL: "https://example.com"},
			want: true,
		},
		{
			name: "503 is retryable",
			err:  &StatusError{StatusCode: http.StatusServiceUnavailable, URL: "https://example.com"},
			want: true,
		},
		{
			name: "404 is not retryable",
			err:  &StatusError{StatusCode: http.StatusNotFound, URL: "https://example.com"},
			want: false,
		},
		{
			name: "400 is not retryable",
			err:  &StatusError{StatusCode: http.StatusBadRequest, URL: "https://example.com"},
			want: false,
		},
		{
			name: "network timeout is retryable",
			err:  timeoutError{},
			want: true,
		},
		{
			name: "connection refused is retryable",
			err:  errors.New("dial tcp 127.0.0.1:1: connect: connection refused"),
			want: true,
		},
		{
			name: "dns failure is retryable",
			err:  errors.New("lookup shop.example.com: no such host"),
			want: true,
		},
		{
			name: "explicit cancellation is not retryable",
			err:  context.Canceled,
			want: false,
		},
		{
			name: "deadline timeout is retryable",
			err:  context.DeadlineExceeded,
			want: true,
		},
		{
			name: "parse-style error is not retryable",
			err:  errors.New("price text did not contain a number"),
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestStatusError_Error tests the status error message.
func TestStatusError_Error(t *testing.T) {
	t.Parallel()

	err := &StatusError{StatusCode: 404, URL: "https://example.com/gone"}
	msg := err.Error()

	if !strings.Contains(msg, "404") {
		t.Errorf("expected status code in message, got %q", msg)
	}
	if !strings.Contains(msg, "https://example.com/gone") {
		t.Errorf("expected URL in message, got %q", msg)
	}
}
