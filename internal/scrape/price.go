package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// amountPattern matches the leftmost run of digits on a page element,
// allowing grouping and decimal separators between them. Spaces and
// non-breaking spaces appear inside the run because some locales group
// thousands with them ("1 299,00").
var amountPattern = regexp.MustCompile(`[0-9](?:[0-9.,'\x{00A0}\x{202F} ]*[0-9])?`)

// currencySymbols maps display symbols to ISO 4217 codes. Multi-rune
// dollar variants must come before the bare "$" check in
// ambiguousSymbols, so this list is ordered and scanned first.
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"US$", "USD"},
	{"CA$", "CAD"},
	{"C$", "CAD"},
	{"AU$", "AUD"},
	{"A$", "AUD"},
	{"NZ$", "NZD"},
	{"HK$", "HKD"},
	{"S$", "SGD"},
	{"R$", "BRL"},
	{"zł", "PLN"},
	{"Kč", "CZK"},
	{"£", "GBP"},
	{"€", "EUR"},
	{"₹", "INR"},
	{"₩", "KRW"},
	{"₽", "RUB"},
	{"₺", "TRY"},
	{"฿", "THB"},
	{"₫", "VND"},
	{"₪", "ILS"},
}

// ambiguousSymbols are symbols shared by several currencies. The rule
// entry's currency hint decides when present; otherwise the most common
// currency for the symbol is assumed.
var ambiguousSymbols = []struct {
	symbol   string
	fallback string
}{
	{"$", "USD"},
	{"¥", "JPY"},
}

// unavailableMarkers are phrases that indicate a product cannot be
// bought right now. The no-space forms also match schema.org
// availability URLs like "https://schema.org/OutOfStock".
var unavailableMarkers = []string{
	"out of stock",
	"outofstock",
	"sold out",
	"soldout",
	"unavailable",
	"not available",
	"no longer available",
	"not in stock",
	"discontinued",
}

// ParsePrice converts price text as displayed on a page into an amount
// in the currency's minor units and an ISO 4217 code.
//
// It handles symbol and code placement ("£1,259.99", "USD 59.99",
// "1.299,00 €"), thousands grouping with commas, dots, apostrophes, and
// spaces, and currencies without minor units ("¥1299").
//
// Design decision: Currency evidence on the page wins over the rule
// entry's hint because:
//  1. The page states what the shopper would actually pay
//  2. Hints exist for pages that show a bare number or a shared symbol
//  3. A wrong hint must not silently relabel a clearly-marked price
//
// Unparseable text is an error. Returning zero for garbage would record
// a phantom price drop.
func ParsePrice(text, hint string) (int64, string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, "", ErrNoPrice
	}

	loc := amountPattern.FindStringIndex(trimmed)
	if loc == nil {
		return 0, "", fmt.Errorf("%w: no digits in %q", ErrPriceFormat, text)
	}

	code, err := detectCurrency(trimmed, loc[0], loc[1], hint)
	if err != nil {
		return 0, "", err
	}

	scale, err := minorScale(code)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q is not an ISO 4217 code", ErrNoCurrency, code)
	}

	amount, err := parseAmount(trimmed[loc[0]:loc[1]], scale)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q: %v", ErrPriceFormat, text, err)
	}

	return amount, code, nil
}

// ParseAvailability classifies availability text. Empty text means the
// rules extract no availability signal, which counts as purchasable; a
// page that lists a price is selling unless it says otherwise.
func ParseAvailability(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return true
	}
	for _, marker := range unavailableMarkers {
		if strings.Contains(t, marker) {
			return false
		}
	}
	return true
}

// detectCurrency resolves the currency for a price, preferring an ISO
// code adjacent to the number, then an unambiguous symbol anywhere in
// the text, then the hint for shared symbols and bare numbers.
func detectCurrency(text string, start, end int, hint string) (string, error) {
	if code := leadingISOCode(text[end:]); code != "" {
		return code, nil
	}
	if code := trailingISOCode(text[:start]); code != "" {
		return code, nil
	}

	for _, s := range currencySymbols {
		if strings.Contains(text, s.symbol) {
			return s.code, nil
		}
	}

	hint = strings.ToUpper(strings.TrimSpace(hint))
	for _, s := range ambiguousSymbols {
		if strings.Contains(text, s.symbol) {
			if hint != "" {
				return hint, nil
			}
			return s.fallback, nil
		}
	}

	if hint != "" {
		return hint, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNoCurrency, text)
}

// leadingISOCode extracts an uppercase ISO 4217 code at the start of the
// text following a price number ("59.99 EUR").
func leadingISOCode(s string) string {
	s = strings.TrimLeft(s, " \t  ")

	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i != 3 {
		return ""
	}
	// "EURx" is a word, not a code
	if len(s) > 3 && isASCIILetter(s[3]) {
		return ""
	}

	code := s[:3]
	if _, err := currency.ParseISO(code); err != nil {
		return ""
	}
	return code
}

// trailingISOCode extracts an uppercase ISO 4217 code at the end of the
// text preceding a price number ("USD 59.99").
func trailingISOCode(s string) string {
	s = strings.TrimRight(s, " \t  ")

	j := len(s)
	for j > 0 && s[j-1] >= 'A' && s[j-1] <= 'Z' {
		j--
	}
	if len(s)-j != 3 {
		return ""
	}
	if j > 0 && isASCIILetter(s[j-1]) {
		return ""
	}

	code := s[j:]
	if _, err := currency.ParseISO(code); err != nil {
		return ""
	}
	return code
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// minorScale returns the number of minor-unit digits for an ISO 4217
// code (2 for GBP, 0 for JPY).
func minorScale(code string) (int, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 0, err
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale, nil
}

// parseAmount converts the matched numeric text into minor units.
//
// Separator roles follow how the text is written, not a fixed locale:
// when comma and dot both appear, the later one is the decimal separator
// ("1.299,00" and "1,299.00" both parse). A single separator followed by
// exactly three digits is grouping ("1,299" is 1299), by one or two
// digits is a decimal point.
func parseAmount(numeric string, scale int) (int64, error) {
	// Spaces and apostrophes only ever group thousands.
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ', '\'':
			return -1
		}
		return r
	}, numeric)

	whole, frac, err := splitDecimal(cleaned)
	if err != nil {
		return 0, err
	}

	if frac != "" {
		if scale == 0 {
			return 0, fmt.Errorf("fraction %q in a currency without minor units", frac)
		}
		if len(frac) > scale {
			return 0, fmt.Errorf("fraction %q exceeds %d minor digits", frac, scale)
		}
	}
	for len(frac) < scale {
		frac += "0"
	}

	if len(whole) > 15 {
		return 0, fmt.Errorf("amount %q too large", whole)
	}

	minor, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	for i := 0; i < scale; i++ {
		minor *= 10
	}
	if frac != "" {
		fracN, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, err
		}
		minor += fracN
	}

	return minor, nil
}

// splitDecimal separates the whole and fractional digit strings of a
// cleaned numeric token containing only digits, commas, and dots.
func splitDecimal(cleaned string) (whole, frac string, err error) {
	lastSep := strings.LastIndexAny(cleaned, ",.")
	if lastSep < 0 {
		return cleaned, "", nil
	}

	sep := cleaned[lastSep]
	head := cleaned[:lastSep]
	tail := cleaned[lastSep+1:]

	other := byte('.')
	if sep == '.' {
		other = ','
	}
	mixed := strings.IndexByte(head, other) >= 0

	stripSeps := func(s string) string {
		return strings.Map(func(r rune) rune {
			if r == ',' || r == '.' {
				return -1
			}
			return r
		}, s)
	}

	switch {
	case mixed:
		// Grouping uses one kind, the decimal separator is the other
		// and comes last: "1.299,00" or "1,299.00".
		if len(tail) > 3 {
			return "", "", fmt.Errorf("decimal part %q too long", tail)
		}
		return stripSeps(head), tail, nil

	case strings.Count(cleaned, string(sep)) > 1:
		// "12.345.678" or "1,29,999": repeated same-kind separators
		// only ever group digits.
		return stripSeps(cleaned), "", nil

	case len(tail) == 3:
		// "1,299" is grouping, not a 3-digit fraction.
		return stripSeps(cleaned), "", nil

	case len(tail) <= 2:
		return head, tail, nil

	default:
		return "", "", fmt.Errorf("separator followed by %d digits", len(tail))
	}
}
