package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Config.ValidateServe()
// and provide specific information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate connection failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent checks, effectively
	// stopping the check process.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidRecentCheckWindow is returned when the recent-check window
	// is negative. A negative window is invalid; use 0 to always re-check.
	ErrInvalidRecentCheckWindow = errors.New("invalid recent-check window: must be non-negative")

	// ErrInvalidMaxRetries is returned when the retry count is negative.
	// A negative retry count is invalid; use 0 to disable retries.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidRateLimit is returned when the per-host rate limit is not
	// positive. A rate of zero would block every fetch forever.
	ErrInvalidRateLimit = errors.New("invalid host rate limit: must be positive")

	// ErrMissingAdminToken is returned by ValidateServe when no admin token
	// is configured. The token protects mutating API routes, so serving
	// without one must fail at startup rather than silently allowing
	// unauthenticated writes.
	ErrMissingAdminToken = errors.New("admin token not configured: set PRICEWATCH_ADMIN_TOKEN before serving")

	// ErrUnknownRegion is returned by ValidateServe when the configured
	// region has no entry in the hosting map. Item links in API responses
	// are built from the region's base URL, so an unmapped region would
	// produce broken links on every response.
	ErrUnknownRegion = errors.New("unknown hosting region: no base URL configured for it")

	// ErrInvalidHostingURL is returned by ValidateServe when the active
	// region's base URL is not an absolute http or https URL.
	ErrInvalidHostingURL = errors.New("invalid hosting URL: must be an absolute http(s) URL")
)
