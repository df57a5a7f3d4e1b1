package urlkey

import "errors"

// URL identity errors.
//
// Design decision: We use a single sentinel error for every unparseable
// input rather than distinct errors per failure mode. Callers only ever
// branch on "was this a usable URL"; the wrapped message carries the
// detail for logs. Using errors.New() rather than a custom type because
// no caller needs structured fields from the failure.
var (
	// ErrInvalidURL is returned when an input cannot be parsed into
	// scheme, host, and path components.
	ErrInvalidURL = errors.New("invalid URL")
)
