package scrape

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/pricewatch/pricewatch/internal/model"
	"github.com/pricewatch/pricewatch/internal/rules"
)

// AutoParser extracts product fields without per-site configuration.
// It reads the structured metadata well-behaved shops publish (Open
// Graph, schema.org microdata) and falls back to price-like markup.
//
// Design decision: We use golang.org/x/net/html directly rather than a
// selector engine because:
//  1. It correctly handles malformed HTML common on the web
//  2. One walk collects title, metadata, and candidates together
//  3. Heuristic attribute checks don't map cleanly onto selectors
//
// This parser is a fallback for hosts without tailored rules; hosts
// that matter get a selectors, xpath, or script entry.
type AutoParser struct{}

// NewAutoParser creates a heuristic parser.
func NewAutoParser() *AutoParser {
	return &AutoParser{}
}

// Name returns the parser identifier.
func (p *AutoParser) Name() string {
	return rules.ParserAuto
}

// priceCandidateLimit caps candidate text length. Price strings are
// short; anything longer means the walk matched a layout container.
const priceCandidateLimit = 100

// Parse extracts product fields from page metadata and price-like
// markup. Structured metadata wins over visible text when both exist.
func (p *AutoParser) Parse(ctx context.Context, entry rules.Entry, snapshot *model.Snapshot) (*model.Product, error) {
	if err := checkParseable(ctx, snapshot); err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(snapshot.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	scan := newAutoScan()
	scan.walk(doc)

	// A currency named in metadata beats the rule entry's hint: the
	// page states what it charges in.
	if code := firstNonEmpty(
		scan.meta["product:price:currency"],
		scan.meta["og:price:currency"],
		scan.meta["priceCurrency"],
	); code != "" {
		entry.Currency = code
	}

	priceText := firstNonEmpty(
		scan.meta["product:price:amount"],
		scan.meta["og:price:amount"],
		scan.meta["price"],
	)
	if priceText == "" {
		for _, candidate := range scan.prices {
			if _, _, err := ParsePrice(candidate, entry.Currency); err == nil {
				priceText = candidate
				break
			}
		}
	}

	name := firstNonEmpty(scan.meta["og:title"], scan.title)
	image := firstNonEmpty(scan.meta["og:image"], scan.image)

	available := true
	if availText := firstNonEmpty(scan.avails...); availText != "" {
		available = ParseAvailability(availText)
	}

	return buildProduct(entry, snapshot, name, priceText, image, available)
}

// autoScan accumulates everything one DOM walk finds.
type autoScan struct {
	title  string
	meta   map[string]string
	prices []string
	avails []string
	image  string
}

func newAutoScan() *autoScan {
	return &autoScan{meta: make(map[string]string)}
}

// walk traverses the DOM collecting metadata and candidates.
func (s *autoScan) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		s.processElement(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.walk(c)
	}
}

func (s *autoScan) processElement(n *html.Node) {
	switch n.Data {
	case "title":
		if s.title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			s.title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "meta":
		key := getAttr(n, "name")
		if key == "" {
			key = getAttr(n, "property") // OpenGraph uses property
		}
		if key == "" {
			key = getAttr(n, "itemprop") // microdata uses itemprop
		}
		content := getAttr(n, "content")
		if key != "" && content != "" {
			// Keep the first occurrence; pages list the primary
			// og:image and price before alternates.
			if _, seen := s.meta[key]; !seen {
				s.meta[key] = content
			}
		}

	case "link":
		// schema.org publishes availability as a link target:
		// <link itemprop="availability" href=".../InStock">
		if getAttr(n, "itemprop") == "availability" {
			if href := getAttr(n, "href"); href != "" {
				s.avails = append(s.avails, href)
			}
		}

	case "img":
		if s.image == "" && getAttr(n, "itemprop") == "image" {
			s.image = getAttr(n, "src")
		}

	default:
		s.collectCandidates(n)
	}
}

// collectCandidates records the text of elements whose attributes look
// price- or stock-related.
func (s *autoScan) collectCandidates(n *html.Node) {
	marker := strings.ToLower(getAttr(n, "class") + " " + getAttr(n, "id") + " " + getAttr(n, "itemprop"))

	if strings.Contains(marker, "price") {
		if text := collapsedText(n); text != "" && len(text) <= priceCandidateLimit {
			s.prices = append(s.prices, text)
		}
	}
	if strings.Contains(marker, "availability") || strings.Contains(marker, "stock") {
		if text := collapsedText(n); text != "" && len(text) <= priceCandidateLimit {
			s.avails = append(s.avails, text)
		}
	}
}

// collapsedText returns the element's descendant text with whitespace
// runs collapsed to single spaces.
func collapsedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
