package model

// Outcome classifies what one price check observed.
//
// Design decision: We use iota-based constants rather than string
// constants for efficiency in comparisons and sorting. The String()
// method provides human-readable output when needed.
type Outcome int

const (
	// OutcomeUnknown means the check produced no classifiable result.
	// A result that never reached the scrape step ends up here.
	OutcomeUnknown Outcome = iota

	// OutcomeFailed means the check stopped on an error.
	OutcomeFailed

	// OutcomeSkipped means the check did no work, typically because a
	// recent check already covered the item.
	OutcomeSkipped

	// OutcomeFirst means this is the first price observed for the item.
	// A currency switch also restarts the series and lands here.
	OutcomeFirst

	// OutcomeDrop means the price went down since the last observation.
	OutcomeDrop

	// OutcomeRise means the price went up since the last observation.
	OutcomeRise

	// OutcomeUnchanged means the price matches the last observation.
	OutcomeUnchanged
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeFailed:
		return "FAILED"
	case OutcomeSkipped:
		return "SKIPPED"
	case OutcomeFirst:
		return "NEW"
	case OutcomeDrop:
		return "DROP"
	case OutcomeRise:
		return "RISE"
	case OutcomeUnchanged:
		return "UNCHANGED"
	default:
		return "UNKNOWN"
	}
}

// Outcome classifies this check result.
func (r *CheckResult) Outcome() Outcome {
	switch {
	case r.Failed():
		return OutcomeFailed
	case r.Skipped:
		return OutcomeSkipped
	case r.Price == nil:
		return OutcomeUnknown
	case r.PreviousPrice == nil:
		return OutcomeFirst
	case r.Price.Currency != r.PreviousPrice.Currency:
		// A currency switch makes amounts incomparable, so the new
		// price starts a fresh series.
		return OutcomeFirst
	case r.Price.Amount < r.PreviousPrice.Amount:
		return OutcomeDrop
	case r.Price.Amount > r.PreviousPrice.Amount:
		return OutcomeRise
	default:
		return OutcomeUnchanged
	}
}
