package model

import "time"

// CheckResult is the accumulated outcome of checking one tracked item.
// Pipeline steps fill it in as they run; report writers and the API
// render it afterward.
type CheckResult struct {
	// Input is the URL or document ID the check was requested with.
	Input string `json:"input"`

	// Item is the tracked item the check resolved to.
	Item *Item `json:"item,omitempty"`

	// Snapshot is the fetched page, nil when the fetch was skipped or
	// failed before a response arrived.
	Snapshot *Snapshot `json:"-"` // Excluded from JSON due to size

	// Product holds the fields extracted from the snapshot.
	Product *Product `json:"product,omitempty"`

	// Price is the price point observed by this check.
	Price *PricePoint `json:"price,omitempty"`

	// PreviousPrice is the price stored before this check ran, used
	// for change and drop detection.
	PreviousPrice *PricePoint `json:"previous_price,omitempty"`

	// StartedAt is when the check began.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the check took end to end.
	Duration time.Duration `json:"duration"`

	// Skipped is true when the check did no work, with SkipReason
	// saying why (e.g. a recent check already covered the item).
	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut is true when the check was cancelled by its deadline.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error is the failure that stopped the check, nil on success.
	Error error `json:"-"`

	// ErrorMessage mirrors Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCheckResult creates a CheckResult for the given input.
func NewCheckResult(input string) *CheckResult {
	return &CheckResult{
		Input:     input,
		StartedAt: time.Now(),
	}
}

// SetError records a failure on the result.
func (r *CheckResult) SetError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// Failed reports whether the check ended in an error.
func (r *CheckResult) Failed() bool {
	return r.Error != nil
}

// PriceChanged reports whether this check observed a price different
// from the previously stored one. A first observation is a change.
func (r *CheckResult) PriceChanged() bool {
	if r.Price == nil {
		return false
	}
	if r.PreviousPrice == nil {
		return true
	}
	return !r.Price.Equal(*r.PreviousPrice)
}

// PriceDelta returns the signed difference in minor units between this
// check's price and the previous one. It returns 0 when either side is
// missing or the currencies differ.
func (r *CheckResult) PriceDelta() int64 {
	if r.Price == nil || r.PreviousPrice == nil {
		return 0
	}
	if r.Price.Currency != r.PreviousPrice.Currency {
		return 0
	}
	return r.Price.Amount - r.PreviousPrice.Amount
}

// PriceDropped reports whether the price went down since the last
// stored observation.
func (r *CheckResult) PriceDropped() bool {
	return r.PriceDelta() < 0
}
