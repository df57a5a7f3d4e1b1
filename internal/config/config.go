package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for polite scraping of public shop pages and
// can be overridden via the configuration file, environment, or CLI flags.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pricewatch"

	// DefaultTimeout is set to 30 seconds. Product pages are ordinary
	// clearnet fetches; a page that takes longer than this is better
	// treated as a failed check and picked up on the next cycle.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize of 4 concurrent checks balances throughput with
	// politeness. Tracked items cluster on a handful of shops, so high
	// concurrency mostly means hammering the same hosts.
	DefaultBatchSize = 4

	// DefaultMaxRetries is the number of retry attempts for transient
	// fetch failures (network errors, timeouts, 429/5xx responses).
	// Parse failures are deterministic and are never retried.
	DefaultMaxRetries = 3

	// DefaultHostRateLimit is the per-host fetch rate in requests per
	// second. One request per second is conservative and keeps check
	// traffic from looking like abuse to shop operators.
	DefaultHostRateLimit = 1.0

	// DefaultRecentCheckWindow is how recent a prior check must be for
	// the pipeline to skip re-fetching an item. An hour is frequent
	// enough for price tracking while avoiding redundant fetches from
	// repeated runs. A window of 0 disables skipping.
	DefaultRecentCheckWindow = time.Hour

	// DefaultUserAgent identifies pricewatch in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows shop
	// operators to identify tracker traffic in their logs.
	DefaultUserAgent = "pricewatch/1.0 (+https://github.com/pricewatch/pricewatch)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML product pages while preventing
	// memory exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultServeAddr is the listen address for the HTTP API.
	DefaultServeAddr = ":8080"

	// DefaultRegion is the hosting region used when none is configured.
	// It maps to a localhost base URL so self-hosted installs work
	// without any hosting configuration.
	DefaultRegion = "local"

	// DefaultHostingURL is the public base URL for the default region.
	// Item links in API responses are rendered relative to this.
	DefaultHostingURL = "http://localhost:8080"

	// DefaultLogFile is the rotating log file name used by serve mode.
	// It is created under the XDG data directory unless overridden.
	DefaultLogFile = "pricewatch.log"
)

// Config holds all configuration options for pricewatch.
// This struct is designed to be populated from defaults, the configuration
// file, environment variables, and CLI flags, then passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, ServeConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// Every recognized setting is a typed field here; there is no dynamic
// string-keyed lookup, so a typo in a setting name is a compile error or a
// YAML field that simply has no effect, never a silent false.
type Config struct {
	// Timeout is the overall timeout for each HTTP fetch, including
	// redirects and retried attempts' individual connections.
	Timeout time.Duration

	// BatchSize is the number of concurrent checks when processing
	// multiple items. Higher values increase throughput but may trigger
	// rate limiting on the shops being checked.
	BatchSize int

	// MaxRetries is the number of retry attempts for transient fetch
	// failures. Zero disables retrying.
	MaxRetries int

	// HostRateLimit is the per-host fetch rate in requests per second.
	// All fetches to the same hostname share one limiter.
	HostRateLimit float64

	// RecentCheckWindow is how recent a prior check must be for an item
	// to be skipped instead of re-fetched. Zero disables skipping.
	RecentCheckWindow time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .pricewatch in the current
	// directory, the XDG config directory, and the home directory.
	ConfigFilePath string

	// RulesPath is the path to a scrape rules YAML file.
	// If empty, the embedded default rule table is used.
	RulesPath string

	// HostConfigs holds host-specific fetch configuration loaded from
	// the config file (cookies, extra headers per shop).
	HostConfigs *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Targets is the list of product URLs or document IDs to operate on.
	// For the check command an empty list means "all tracked items".
	Targets []string

	// DBDir is the directory path for storing the SQLite database.
	// Defaults to the XDG data directory
	// (~/.local/share/pricewatch on Linux).
	DBDir string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory
	// exhaustion. Set to 0 to use the default (5MB).
	MaxBodySize int64

	// ServeAddr is the listen address for the HTTP API ("host:port"
	// or ":port").
	ServeAddr string

	// Region selects which hosting base URL from HostingURLs is used to
	// build absolute item links in API responses.
	Region string

	// HostingURLs maps region names to public hosting base URLs.
	// The active region's URL is validated at startup when serving.
	HostingURLs map[string]string

	// AdminToken authenticates mutating API routes. It is read from the
	// PRICEWATCH_ADMIN_TOKEN environment variable (or a .env file) and
	// is required when serving; it never appears in the config file or
	// in logs.
	AdminToken string

	// LogFile is the rotating log file path used by serve mode.
	LogFile string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, rate limit).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		BatchSize:         DefaultBatchSize,
		MaxRetries:        DefaultMaxRetries,
		HostRateLimit:     DefaultHostRateLimit,
		RecentCheckWindow: DefaultRecentCheckWindow,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		ServeAddr:         DefaultServeAddr,
		Region:            DefaultRegion,
		HostingURLs:       map[string]string{DefaultRegion: DefaultHostingURL},
		DBDir:             XDGDataDir(),
		LogFile:           filepath.Join(XDGDataDir(), DefaultLogFile),
	}
}

// XDGDataDir returns the XDG data directory for pricewatch.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/pricewatch
// On macOS: ~/Library/Application Support/pricewatch
// On Windows: %LOCALAPPDATA%\pricewatch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pricewatch.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/pricewatch
// On macOS: ~/Library/Application Support/pricewatch
// On Windows: %APPDATA%\pricewatch
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// HostingURL returns the public hosting base URL for the active region.
// ValidateServe must have passed for the result to be meaningful.
func (c *Config) HostingURL() string {
	return c.HostingURLs[c.Region]
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any checking begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// BatchSize must be positive; zero would mean no checking
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// RecentCheckWindow must be non-negative; 0 means always re-check
	if c.RecentCheckWindow < 0 {
		return ErrInvalidRecentCheckWindow
	}

	// MaxRetries must be non-negative; 0 disables retries
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}

	// HostRateLimit must be positive; zero would block every fetch
	if c.HostRateLimit <= 0 {
		return ErrInvalidRateLimit
	}

	return nil
}

// ValidateServe checks the configuration for serve mode.
// It runs the base Validate checks and then verifies the settings the
// HTTP API depends on: the admin token and the active region's hosting
// URL. Both are security- or correctness-sensitive, so a missing or
// malformed value fails here at startup instead of at request time.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.AdminToken == "" {
		return ErrMissingAdminToken
	}

	base, ok := c.HostingURLs[c.Region]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, c.Region)
	}

	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: region %q maps to %q", ErrInvalidHostingURL, c.Region, base)
	}

	return nil
}
