package scrape

import (
	"context"
	"fmt"
	"strconv"

	"github.com/robertkrimen/otto"

	"github.com/pricewatch/pricewatch/internal/model"
	"github.com/pricewatch/pricewatch/internal/rules"
)

// ScriptParser runs a per-site JavaScript snippet from the rule entry
// against the page. Some shops render prices through markup too
// irregular for selectors; a few lines of script can cut through it.
//
// The snippet sees two globals, "body" (the page HTML) and "url", and
// its completion value must be an object with some of the fields name,
// price, availability, and image. A bare object literal parses as a
// block statement in JavaScript, so snippets wrap it in parentheses:
//
//	(function() {
//	    var m = body.match(/itemPrice = "([^"]+)"/);
//	    return {price: m ? m[1] : ""};
//	})()
//
// Design decision: Scripts return the price TEXT, not a number, because:
//  1. Amount parsing stays in one place with one set of rules
//  2. Scripts remain simple string surgery
//  3. The original text is kept on the product for diagnostics
//
// Scripts come from the operator's own rules file and run in an
// embedded interpreter with no host access beyond the two globals.
type ScriptParser struct{}

// NewScriptParser creates a script parser.
func NewScriptParser() *ScriptParser {
	return &ScriptParser{}
}

// Name returns the parser identifier.
func (p *ScriptParser) Name() string {
	return rules.ParserScript
}

// Parse runs the entry's script against the snapshot and converts the
// returned fields into a product.
func (p *ScriptParser) Parse(ctx context.Context, entry rules.Entry, snapshot *model.Snapshot) (*model.Product, error) {
	if err := checkParseable(ctx, snapshot); err != nil {
		return nil, err
	}

	vm := otto.New()
	if err := vm.Set("body", string(snapshot.Body)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}
	if err := vm.Set("url", snapshot.URL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}

	value, err := vm.Eval(entry.Script)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}
	exported, err := value.Export()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}

	fields, ok := exported.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: script returned %T, want an object", ErrScript, exported)
	}

	available := true
	switch v := fields["availability"].(type) {
	case bool:
		available = v
	case string:
		available = ParseAvailability(v)
	}

	return buildProduct(entry, snapshot,
		scriptString(fields, "name"),
		scriptString(fields, "price"),
		scriptString(fields, "image"),
		available)
}

// scriptString reads a field from the exported script result. Numbers
// are accepted for scripts that extract from embedded JSON, where the
// price is already numeric.
func scriptString(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}
