package scrape

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/pricewatch/pricewatch/internal/model"
	"github.com/pricewatch/pricewatch/internal/rules"
)

// XPathParser extracts product fields with the XPath expressions a rule
// entry configures. Some sites bury the price in markup CSS selectors
// cannot address (text siblings, attribute matches on ancestors); XPath
// reaches those.
type XPathParser struct{}

// NewXPathParser creates an XPath parser.
func NewXPathParser() *XPathParser {
	return &XPathParser{}
}

// Name returns the parser identifier.
func (p *XPathParser) Name() string {
	return rules.ParserXPath
}

// Parse extracts product fields using the entry's XPath expressions.
// Expressions may select elements, attributes ("//img/@src"), or text
// nodes; the node's inner text is the extracted value either way.
func (p *XPathParser) Parse(ctx context.Context, entry rules.Entry, snapshot *model.Snapshot) (*model.Product, error) {
	if err := checkParseable(ctx, snapshot); err != nil {
		return nil, err
	}

	doc, err := htmlquery.Parse(bytes.NewReader(snapshot.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	name, err := queryText(doc, entry.Selectors.Name)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name, _ = queryText(doc, "//title") //nolint:errcheck // fixed expression cannot fail to compile
	}

	priceText, err := queryText(doc, entry.Selectors.Price)
	if err != nil {
		return nil, err
	}
	availText, err := queryText(doc, entry.Selectors.Availability)
	if err != nil {
		return nil, err
	}
	imageRef, err := queryRef(doc, entry.Selectors.Image)
	if err != nil {
		return nil, err
	}

	return buildProduct(entry, snapshot, name, priceText, imageRef, ParseAvailability(availText))
}

// queryText returns the trimmed inner text of the first node the
// expression matches. A malformed expression is a rules defect and is
// reported, not swallowed.
func queryText(doc *html.Node, expr string) (string, error) {
	if expr == "" {
		return "", nil
	}

	node, err := htmlquery.Query(doc, expr)
	if err != nil {
		return "", fmt.Errorf("xpath %q: %w", expr, err)
	}
	if node == nil {
		return "", nil
	}
	return strings.TrimSpace(htmlquery.InnerText(node)), nil
}

// queryRef returns a URL-ish value from the first matched node. An
// attribute selection yields its value as inner text; an element node
// falls back to the attributes references are carried in.
func queryRef(doc *html.Node, expr string) (string, error) {
	if expr == "" {
		return "", nil
	}

	node, err := htmlquery.Query(doc, expr)
	if err != nil {
		return "", fmt.Errorf("xpath %q: %w", expr, err)
	}
	if node == nil {
		return "", nil
	}

	if v := strings.TrimSpace(htmlquery.InnerText(node)); v != "" && node.Type != html.ElementNode {
		return v, nil
	}
	for _, attr := range []string{"src", "data-src", "content", "href"} {
		if v := strings.TrimSpace(htmlquery.SelectAttr(node, attr)); v != "" {
			return v, nil
		}
	}
	return strings.TrimSpace(htmlquery.InnerText(node)), nil
}
