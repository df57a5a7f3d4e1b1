package scrape

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pricewatch/pricewatch/internal/model"
	"github.com/pricewatch/pricewatch/internal/rules"
)

// SelectorsParser extracts product fields with the CSS selectors a rule
// entry configures. This is the workhorse parser; most hosts can be
// described with a handful of selectors.
type SelectorsParser struct{}

// NewSelectorsParser creates a CSS selector parser.
func NewSelectorsParser() *SelectorsParser {
	return &SelectorsParser{}
}

// Name returns the parser identifier.
func (p *SelectorsParser) Name() string {
	return rules.ParserSelectors
}

// Parse extracts product fields using the entry's CSS selectors.
// A name selector is optional; the page title fills in when it is
// missing. The price selector is required by rule table validation.
func (p *SelectorsParser) Parse(ctx context.Context, entry rules.Entry, snapshot *model.Snapshot) (*model.Product, error) {
	if err := checkParseable(ctx, snapshot); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(snapshot.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	name := selectText(doc, entry.Selectors.Name)
	if name == "" {
		name = strings.TrimSpace(doc.Find("title").First().Text())
	}

	priceText := selectText(doc, entry.Selectors.Price)
	available := ParseAvailability(selectText(doc, entry.Selectors.Availability))
	imageRef := selectRef(doc, entry.Selectors.Image)

	return buildProduct(entry, snapshot, name, priceText, imageRef, available)
}

// selectText returns the trimmed text of the first node the selector
// matches. An empty or invalid selector matches nothing.
func selectText(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

// selectRef returns a URL-ish value from the first matched node, trying
// the attributes images and meta tags carry references in.
func selectRef(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}

	sel := doc.Find(selector).First()
	for _, attr := range []string{"src", "data-src", "content", "href"} {
		if v, ok := sel.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
