package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PricePoint is one observed price for a tracked item.
//
// Design decision: Amount is stored in minor units (cents, pence) as an
// integer because:
//  1. Price comparisons and drop detection must be exact
//  2. Floating point drifts when summed or diffed across history
//  3. The display layer can always reconstruct the decimal form
type PricePoint struct {
	// Amount is the price in the currency's minor units.
	Amount int64 `json:"amount"`

	// Currency is the ISO 4217 code, uppercase.
	Currency string `json:"currency"`

	// Available reports whether the product was purchasable when the
	// price was observed.
	Available bool `json:"available"`

	// ObservedAt is when the price was read from the page.
	ObservedAt time.Time `json:"observed_at"`
}

// Equal reports whether two price points represent the same price,
// ignoring observation time.
func (p PricePoint) Equal(other PricePoint) bool {
	return p.Amount == other.Amount &&
		p.Currency == other.Currency &&
		p.Available == other.Available
}

// Format renders the price for humans, using the currency's symbol and
// decimal scale ("£10.99"). Unknown currency codes fall back to the raw
// minor-unit amount with the code appended.
func (p PricePoint) Format() string {
	unit, err := currency.ParseISO(p.Currency)
	if err != nil {
		return fmt.Sprintf("%d %s", p.Amount, strings.ToUpper(p.Currency))
	}

	scale, _ := currency.Standard.Rounding(unit)
	major := float64(p.Amount) / math.Pow10(scale)

	printer := message.NewPrinter(language.AmericanEnglish)
	return printer.Sprintf("%v", currency.Symbol(unit.Amount(major)))
}
