package scrape

import (
	"errors"
	"testing"
)

// TestParsePrice tests price text conversion across symbol placement,
// grouping styles, and currency resolution.
func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		text         string
		hint         string
		wantAmount   int64
		wantCurrency string
	}{
		{
			name:         "pound symbol with decimals",
			text:         "£51.77",
			wantAmount:   5177,
			wantCurrency: "GBP",
		},
		{
			name:         "pound with thousands comma",
			text:         "£1,259.99",
			wantAmount:   125999,
			wantCurrency: "GBP",
		},
		{
			name:         "euro continental grouping",
			text:         "1.299,00 €",
			wantAmount:   129900,
			wantCurrency: "EUR",
		},
		{
			name:         "iso code before number",
			text:         "USD 59.99",
			wantAmount:   5999,
			wantCurrency: "USD",
		},
		{
			name:         "iso code after number",
			text:         "59.99 EUR",
			wantAmount:   5999,
			wantCurrency: "EUR",
		},
		{
			name:         "yen has no minor units",
			text:         "¥1299",
			wantAmount:   1299,
			wantCurrency: "JPY",
		},
		{
			name:         "yen with hint resolves to yuan",
			text:         "¥12.99",
			hint:         "CNY",
			wantAmount:   1299,
			wantCurrency: "CNY",
		},
		{
			name:         "bare dollar defaults to USD",
			text:         "$49",
			wantAmount:   4900,
			wantCurrency: "USD",
		},
		{
			name:         "bare dollar follows hint",
			text:         "$49",
			hint:         "CAD",
			wantAmount:   4900,
			wantCurrency: "CAD",
		},
		{
			name:         "US dollar prefix is unambiguous",
			text:         "US$49.50",
			wantAmount:   4950,
			wantCurrency: "USD",
		},
		{
			name:         "space grouping with hint",
			text:         "1 299,00 kr",
			hint:         "SEK",
			wantAmount:   129900,
			wantCurrency: "SEK",
		},
		{
			name:         "bare number uses hint",
			text:         "19,99",
			hint:         "EUR",
			wantAmount:   1999,
			wantCurrency: "EUR",
		},
		{
			name:         "single comma before three digits is grouping",
			text:         "$1,299",
			wantAmount:   129900,
			wantCurrency: "USD",
		},
		{
			name:         "repeated dots are grouping",
			text:         "12.345.678",
			hint:         "EUR",
			wantAmount:   1234567800,
			wantCurrency: "EUR",
		},
		{
			name:         "swiss apostrophe grouping",
			text:         "1'299.00",
			hint:         "CHF",
			wantAmount:   129900,
			wantCurrency: "CHF",
		},
		{
			name:         "surrounding label text ignored",
			text:         "Price: £51.77 incl. VAT",
			wantAmount:   5177,
			wantCurrency: "GBP",
		},
		{
			name:         "page currency beats hint",
			text:         "€39.95",
			hint:         "GBP",
			wantAmount:   3995,
			wantCurrency: "EUR",
		},
		{
			name:         "short fraction padded to scale",
			text:         "£1.5",
			wantAmount:   150,
			wantCurrency: "GBP",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			amount, code, err := ParsePrice(tt.text, tt.hint)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if amount != tt.wantAmount {
				t.Errorf("amount = %d, want %d", amount, tt.wantAmount)
			}
			if code != tt.wantCurrency {
				t.Errorf("currency = %q, want %q", code, tt.wantCurrency)
			}
		})
	}
}

// TestParsePrice_Errors tests the failure modes. Garbage must never
// come back as a zero price.
func TestParsePrice_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		hint    string
		wantErr error
	}{
		{
			name:    "empty text",
			text:    "",
			wantErr: ErrNoPrice,
		},
		{
			name:    "whitespace only",
			text:    "   ",
			wantErr: ErrNoPrice,
		},
		{
			name:    "no digits",
			text:    "Call for price",
			hint:    "USD",
			wantErr: ErrPriceFormat,
		},
		{
			name:    "no currency evidence and no hint",
			text:    "19.99",
			wantErr: ErrNoCurrency,
		},
		{
			name:    "fraction in zero-scale currency",
			text:    "¥12.99",
			wantErr: ErrPriceFormat,
		},
		{
			name:    "four digit fraction",
			text:    "1.2345",
			hint:    "EUR",
			wantErr: ErrPriceFormat,
		},
		{
			name:    "amount too large",
			text:    "12345678901234567890",
			hint:    "USD",
			wantErr: ErrPriceFormat,
		},
		{
			name:    "garbage hint",
			text:    "19.99",
			hint:    "DOLLARS",
			wantErr: ErrNoCurrency,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := ParsePrice(tt.text, tt.hint)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParsePrice(%q, %q) error = %v, want %v", tt.text, tt.hint, err, tt.wantErr)
			}
		})
	}
}

// TestParseAvailability tests the stock text classifier.
func TestParseAvailability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "empty text counts as purchasable",
			text: "",
			want: true,
		},
		{
			name: "in stock with count",
			text: "In stock (22 available)",
			want: true,
		},
		{
			name: "plain in stock",
			text: "In Stock",
			want: true,
		},
		{
			name: "out of stock",
			text: "Out of stock",
			want: false,
		},
		{
			name: "sold out",
			text: "SOLD OUT",
			want: false,
		},
		{
			name: "currently unavailable",
			text: "Currently unavailable.",
			want: false,
		},
		{
			name: "schema availability url out of stock",
			text: "https://schema.org/OutOfStock",
			want: false,
		},
		{
			name: "schema availability url in stock",
			text: "https://schema.org/InStock",
			want: true,
		},
		{
			name: "discontinued",
			text: "This product has been discontinued",
			want: false,
		},
		{
			name: "preorder counts as purchasable",
			text: "Pre-order now",
			want: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ParseAvailability(tt.text); got != tt.want {
				t.Errorf("ParseAvailability(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// TestMinorScale tests minor-unit digits for representative currencies.
func TestMinorScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want int
	}{
		{code: "GBP", want: 2},
		{code: "USD", want: 2},
		{code: "EUR", want: 2},
		{code: "JPY", want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			got, err := minorScale(tt.code)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("minorScale(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}

	if _, err := minorScale("XXX?"); err == nil {
		t.Error("expected error for malformed code")
	}
}
