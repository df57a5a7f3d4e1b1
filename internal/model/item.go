package model

import "time"

// Item is a tracked product page. It is keyed by the document ID
// derived from its canonical URL, so tracking the same page twice can
// never create two items.
type Item struct {
	// ID is the document ID: lowercase hex SHA-1 of the canonical URL.
	ID string `json:"id"`

	// URL is the canonical URL of the page.
	URL string `json:"url"`

	// Host is the canonical hostname, matching a rule table entry.
	Host string `json:"host"`

	// Parser names the extraction strategy the rule table assigned.
	Parser string `json:"parser"`

	// Color is the display color from the rule table entry.
	Color string `json:"color,omitempty"`

	// Name is the product name from the most recent successful check.
	Name string `json:"name,omitempty"`

	// ImageURL points at the main product image, when extracted.
	ImageURL string `json:"image_url,omitempty"`

	// AddedAt is when the item was first tracked.
	AddedAt time.Time `json:"added_at"`

	// CheckedAt is when the item was last checked. Zero when the item
	// has never completed a check.
	CheckedAt time.Time `json:"checked_at,omitempty"`

	// LatestPrice is the most recently observed price, nil before the
	// first successful check.
	LatestPrice *PricePoint `json:"latest_price,omitempty"`
}

// Checked reports whether the item has completed at least one check.
func (i *Item) Checked() bool {
	return !i.CheckedAt.IsZero()
}
