package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/pricewatch/pricewatch/internal/config"
	"github.com/pricewatch/pricewatch/internal/model"
)

// Default client settings. These mirror the configuration defaults but are
// kept independent so the package works standalone in tests.
const (
	defaultTimeout        = 30 * time.Second
	defaultUserAgent      = "pricewatch/1.0 (+https://github.com/pricewatch/pricewatch)"
	defaultMaxBodySize    = 5 * 1024 * 1024 // 5MB
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryMaxDelay  = 15 * time.Second
	defaultHostRate       = 1.0 // requests per second per host
	maxRedirects          = 10
)

// Client downloads product pages politely.
// All fetches to the same hostname share one rate limiter, so concurrent
// checks of many items never exceed the configured per-host rate.
type Client struct {
	// httpClient performs the actual requests.
	httpClient *http.Client

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize caps how many body bytes are read per response.
	maxBodySize int64

	// maxRetries is the number of retry attempts after the initial
	// request. Zero disables retrying.
	maxRetries int

	// retryBaseDelay is the delay before the first retry; each further
	// retry doubles it, capped at retryMaxDelay.
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration

	// hostRate is the per-host request rate for new limiters.
	hostRate rate.Limit

	// hostConfigs supplies per-host cookies and headers; may be nil.
	hostConfigs *config.File

	// mu guards limiters.
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the overall timeout for each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithMaxRetries sets the number of retry attempts after the initial
// request. Zero disables retrying.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets the base and maximum backoff delays between retries.
func WithRetryDelay(base, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = base
		c.retryMaxDelay = maxDelay
	}
}

// WithHostRateLimit sets the per-host fetch rate in requests per second.
func WithHostRateLimit(rps float64) Option {
	return func(c *Client) {
		c.hostRate = rate.Limit(rps)
	}
}

// WithHostConfigs sets the per-host cookie and header configuration.
func WithHostConfigs(cf *config.File) Option {
	return func(c *Client) {
		c.hostConfigs = cf
	}
}

// WithHTTPClient replaces the underlying HTTP client.
// Mainly useful in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a new fetch client.
//
// Design decisions for the underlying transport:
//   - A cookie jar scoped by public suffix keeps shop session cookies
//     from leaking across registrable domains
//   - Redirect limit is 10 to prevent redirect loops while allowing
//     normal shop redirects (mobile, locale, canonical-slug)
//   - Idle connections are kept small; checks visit few distinct hosts
func New(opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}) //nolint:errcheck // cookiejar.New only fails with invalid options

	c := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   defaultTimeout,
			Jar:       jar,
			// Limit redirects to prevent loops
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent:      defaultUserAgent,
		maxBodySize:    defaultMaxBodySize,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		retryMaxDelay:  defaultRetryMaxDelay,
		hostRate:       rate.Limit(defaultHostRate),
		limiters:       make(map[string]*rate.Limiter),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch downloads the page at the given URL and returns a snapshot of it.
// It waits for the host's rate limiter, then performs the request,
// retrying transient failures with exponential backoff. The returned
// snapshot's body is capped and its content hash computed.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*model.Snapshot, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	// One limiter per hostname; burst 1 keeps requests evenly spaced.
	if err := c.limiterFor(u.Hostname()).Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	delay := c.retryBaseDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.retryMaxDelay {
				delay = c.retryMaxDelay
			}
		}

		snapshot, err := c.fetchOnce(ctx, pageURL, u.Hostname())
		if err == nil {
			return snapshot, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, c.maxRetries+1, lastErr)
}

// fetchOnce performs a single request attempt.
func (c *Client) fetchOnce(ctx context.Context, pageURL, host string) (*model.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	c.applyHostConfig(req, host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused for the retry.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBodySize))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: pageURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, err
	}

	snapshot := &model.Snapshot{
		URL:         pageURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		FetchedAt:   time.Now(),
	}
	snapshot.ComputeHash()
	snapshot.TruncateBody()

	return snapshot, nil
}

// applyHostConfig injects the configured cookie and headers for the host.
func (c *Client) applyHostConfig(req *http.Request, host string) {
	if c.hostConfigs == nil {
		return
	}

	hc := c.hostConfigs.GetHostConfig(host)
	if hc.Cookie != "" {
		if existing := req.Header.Get("Cookie"); existing != "" {
			req.Header.Set("Cookie", existing+"; "+hc.Cookie)
		} else {
			req.Header.Set("Cookie", hc.Cookie)
		}
	}
	for key, value := range hc.Headers {
		req.Header.Set(key, value)
	}
}

// limiterFor returns the rate limiter for a hostname, creating it on
// first use.
func (c *Client) limiterFor(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(c.hostRate, 1)
	c.limiters[host] = l
	return l
}

// retryablePatterns are lowercase substrings of transport-level error
// messages that indicate transient conditions worth retrying. Matching on
// strings is a last resort for errors the typed checks in IsRetryable
// cannot classify (syscall errors surface through several wrapper layers
// with no stable types).
var retryablePatterns = []string{
	"timeout",
	"deadline exceeded",
	"connection refused",
	"connection reset",
	"no such host",
	"temporary failure",
	"network is unreachable",
	"unexpected eof",
}

// IsRetryable reports whether the error represents a transient failure
// that a later attempt might not hit. Explicit cancellation is never
// retryable: the caller has given up. A deadline timeout is classified as
// transient; when the deadline belonged to the surrounding context rather
// than a single attempt, the retry loop's own context check stops further
// attempts anyway.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}
