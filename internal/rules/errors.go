package rules

import "errors"

// Rule source errors.
//
// Design decision: Every load or parse failure wraps the single
// ErrRuleSource sentinel instead of using one sentinel per failure
// mode. Callers never recover from individual modes; the table is
// either usable or the process must not start. The wrapped message
// carries the detail (file, entry index, field) for the operator.
var (
	// ErrRuleSource is returned when the rules source is missing,
	// malformed, or yields an unusable table.
	ErrRuleSource = errors.New("unusable rules source")
)
