package scrape

import "errors"

// Sentinel errors for extraction failures.
//
// Design decision: We define package-level sentinel errors because:
//  1. Callers can use errors.Is() for error type checking
//  2. Error messages remain consistent across the package
//  3. The pipeline can distinguish "no price on page" from transport
//     failures, which are retried, while extraction failures are not
var (
	// ErrUnknownParser is returned when a rule entry names a parser
	// identifier no implementation is registered for.
	ErrUnknownParser = errors.New("unknown parser")

	// ErrNotHTML is returned when the snapshot body is not an HTML page.
	ErrNotHTML = errors.New("snapshot is not HTML")

	// ErrNoPrice is returned when the configured price selector matches
	// nothing, or matches an element with no text.
	ErrNoPrice = errors.New("no price found on page")

	// ErrPriceFormat is returned when price text was found but could not
	// be converted to an amount.
	ErrPriceFormat = errors.New("unparseable price text")

	// ErrNoCurrency is returned when neither the page nor the rule entry
	// reveals which currency the price is in.
	ErrNoCurrency = errors.New("currency could not be determined")

	// ErrScript is returned when a per-site extraction script fails to
	// run or returns something other than an object of fields.
	ErrScript = errors.New("extraction script failed")
)
