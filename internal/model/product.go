package model

import "time"

// Product holds the fields a parser extracted from one page snapshot.
// It is the parser's raw output; the pipeline turns it into a PricePoint
// and folds the rest into the tracked item.
type Product struct {
	// Name is the product name as shown on the page.
	Name string `json:"name,omitempty"`

	// PriceText is the price exactly as it appeared ("£1,259.99").
	// Kept for diagnostics when amount parsing misbehaves.
	PriceText string `json:"price_text,omitempty"`

	// Amount is the parsed price in minor units.
	Amount int64 `json:"amount"`

	// Currency is the ISO 4217 code, from the page or the rule entry.
	Currency string `json:"currency,omitempty"`

	// Available reports whether the page showed the product as
	// purchasable.
	Available bool `json:"available"`

	// ImageURL is the main product image, when the rules extract one.
	ImageURL string `json:"image_url,omitempty"`
}

// PricePoint converts the extracted fields into a price observation.
func (p *Product) PricePoint(observedAt time.Time) PricePoint {
	return PricePoint{
		Amount:     p.Amount,
		Currency:   p.Currency,
		Available:  p.Available,
		ObservedAt: observedAt,
	}
}
