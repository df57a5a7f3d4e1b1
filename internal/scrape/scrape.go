package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pricewatch/pricewatch/internal/model"
	"github.com/pricewatch/pricewatch/internal/rules"
)

// Parser defines the interface for extraction strategies.
// Each strategy implementation must provide this interface to be selected
// by a host's rule entry.
//
// Design decision: We use an interface rather than a concrete type because:
//  1. Extraction strategies require vastly different implementations
//  2. Allows for easy mocking in tests
//  3. Enables custom parsers to be registered in the future
//  4. The pipeline can treat all strategies uniformly
type Parser interface {
	// Parse extracts product fields from a page snapshot, following the
	// host's rule entry for selectors, scripts, and currency hints.
	//
	// The context should be used for cancellation and timeouts.
	// Implementations must respect context cancellation.
	Parse(ctx context.Context, entry rules.Entry, snapshot *model.Snapshot) (*model.Product, error)

	// Name returns the parser identifier as used in rule entries
	// (e.g., "selectors", "xpath").
	Name() string
}

// Registry maps parser identifiers to implementations.
// Rule entries name a parser; the registry resolves the name and runs it.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates a registry with the built-in parsers registered
// under the identifiers the rule table validates against.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}

	r.Register(NewSelectorsParser())
	r.Register(NewXPathParser())
	r.Register(NewScriptParser())
	r.Register(NewAutoParser())

	return r
}

// Register adds a parser under its own name, replacing any existing
// parser with that name.
func (r *Registry) Register(p Parser) {
	r.parsers[p.Name()] = p
}

// Get returns the parser registered under the given identifier.
func (r *Registry) Get(name string) (Parser, bool) {
	p, ok := r.parsers[name]
	return p, ok
}

// Parse dispatches the snapshot to the parser the rule entry names.
func (r *Registry) Parse(ctx context.Context, entry rules.Entry, snapshot *model.Snapshot) (*model.Product, error) {
	p, ok := r.parsers[entry.Parser]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParser, entry.Parser)
	}
	return p.Parse(ctx, entry, snapshot)
}

// baseURL picks the URL relative references on the page resolve against.
// After redirects the final URL is the page's real location.
func baseURL(snapshot *model.Snapshot) string {
	if snapshot.FinalURL != "" {
		return snapshot.FinalURL
	}
	return snapshot.URL
}

// resolveURL resolves a possibly relative reference against the page URL.
// Unresolvable references are dropped rather than carried through broken.
func resolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(u).String()
}

// checkParseable rejects snapshots a parser cannot work with before any
// extraction is attempted.
func checkParseable(ctx context.Context, snapshot *model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !snapshot.IsHTML() {
		return fmt.Errorf("%w: content type %q", ErrNotHTML, snapshot.ContentType)
	}
	return nil
}

// buildProduct assembles extracted raw values into a Product. All
// parsers funnel through here so price semantics stay identical across
// strategies.
func buildProduct(entry rules.Entry, snapshot *model.Snapshot, name, priceText, imageRef string, available bool) (*model.Product, error) {
	priceText = strings.TrimSpace(priceText)
	if priceText == "" {
		return nil, fmt.Errorf("%w: host %s", ErrNoPrice, entry.Host)
	}

	amount, code, err := ParsePrice(priceText, entry.Currency)
	if err != nil {
		return nil, err
	}

	return &model.Product{
		Name:      strings.TrimSpace(name),
		PriceText: priceText,
		Amount:    amount,
		Currency:  code,
		Available: available,
		ImageURL:  resolveURL(baseURL(snapshot), imageRef),
	}, nil
}
