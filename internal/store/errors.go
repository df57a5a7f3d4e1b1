package store

import "errors"

// ErrNotFound is returned when the requested item does not exist.
//
// Design decision: We use a sentinel error rather than a nil result
// because:
//  1. Callers can use errors.Is() for error type checking
//  2. The API layer maps it directly to a 404 response
//  3. A nil item forces a nil check at every call site
var ErrNotFound = errors.New("item not found")
