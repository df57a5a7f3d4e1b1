package pipeline

import "errors"

// Pipeline errors.
//
// Design decision: The pipeline introduces a single sentinel of its own
// because:
// 1. Admission is the pipeline's policy; fetch, scrape, and store
//    failures already carry their own packages' sentinels
// 2. The HTTP API distinguishes it with errors.Is from invalid URLs
//    (urlkey.ErrInvalidURL) and unknown items (store.ErrNotFound),
//    mapping each to a different status code
var (
	// ErrUnsupportedHost is returned when a URL's canonical hostname has
	// no entry in the rule table.
	ErrUnsupportedHost = errors.New("unsupported host")
)
