package model

import "time"

// CheckReport summarizes one check run across any number of items.
// Report writers render it; the check command and the API build it from
// the batch results.
//
// Design decision: We aggregate results into a dedicated report type
// rather than having writers walk raw result slices because:
//  1. Outcome counting happens once, not per output format
//  2. It can be serialized to JSON for tools that want structured output
//  3. It separates presentation concerns from pipeline execution
type CheckReport struct {
	// GeneratedAt is when the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Duration is how long the whole run took.
	Duration time.Duration `json:"duration"`

	// Results holds every check in the run, in input order.
	Results []*CheckResult `json:"results"`

	// History holds recent price points per document ID, attached when
	// the report should include price history tables.
	History map[string][]PricePoint `json:"history,omitempty"`

	// === Outcome Summary ===

	// DropCount is the number of items whose price went down.
	DropCount int `json:"drop_count"`

	// RiseCount is the number of items whose price went up.
	RiseCount int `json:"rise_count"`

	// FirstCount is the number of items observed for the first time.
	FirstCount int `json:"first_count"`

	// UnchangedCount is the number of items whose price did not move.
	UnchangedCount int `json:"unchanged_count"`

	// SkippedCount is the number of items skipped by the recent-check
	// window.
	SkippedCount int `json:"skipped_count"`

	// FailedCount is the number of checks that ended in an error.
	FailedCount int `json:"failed_count"`
}

// NewCheckReport builds a report from a run's results and counts them
// by outcome.
func NewCheckReport(results []*CheckResult) *CheckReport {
	report := &CheckReport{
		GeneratedAt: time.Now(),
		Results:     results,
	}
	report.countByOutcome()
	return report
}

// countByOutcome tallies results into the summary counters.
func (r *CheckReport) countByOutcome() {
	for _, result := range r.Results {
		if result == nil {
			continue
		}
		switch result.Outcome() {
		case OutcomeDrop:
			r.DropCount++
		case OutcomeRise:
			r.RiseCount++
		case OutcomeFirst:
			r.FirstCount++
		case OutcomeUnchanged:
			r.UnchangedCount++
		case OutcomeSkipped:
			r.SkippedCount++
		case OutcomeFailed:
			r.FailedCount++
		}
	}
}

// TotalChecks returns the number of results in the run.
func (r *CheckReport) TotalChecks() int {
	return len(r.Results)
}

// HasDrops returns true if any item's price went down.
func (r *CheckReport) HasDrops() bool {
	return r.DropCount > 0
}

// HasFailures returns true if any check ended in an error.
func (r *CheckReport) HasFailures() bool {
	return r.FailedCount > 0
}

// HasChanges returns true if any price moved, including first
// observations.
func (r *CheckReport) HasChanges() bool {
	return r.DropCount > 0 || r.RiseCount > 0 || r.FirstCount > 0
}

// ResultsByOutcome returns the results with the given outcome, in input
// order.
func (r *CheckReport) ResultsByOutcome(outcome Outcome) []*CheckResult {
	var matched []*CheckResult
	for _, result := range r.Results {
		if result == nil {
			continue
		}
		if result.Outcome() == outcome {
			matched = append(matched, result)
		}
	}
	return matched
}

// AttachHistory records recent price points for an item so writers can
// render history tables.
func (r *CheckReport) AttachHistory(itemID string, points []PricePoint) {
	if len(points) == 0 {
		return
	}
	if r.History == nil {
		r.History = make(map[string][]PricePoint)
	}
	r.History[itemID] = points
}
