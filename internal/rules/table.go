package rules

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pricewatch/pricewatch/internal/urlkey"
)

//go:embed rules.yaml
var defaultSource []byte

// Table is an immutable hostname-to-Entry snapshot. Build it once at
// startup with Load, Parse, or New; all methods are read-only and safe
// for concurrent use.
type Table struct {
	entries map[string]Entry
	hosts   []string
}

// New builds a Table from rule entries.
//
// Hosts are stored canonically (lowercase, no leading "www.") so the
// exact-match gate agrees with canonical URL hostnames. Entries are
// validated on the way in: an unusable entry fails the whole table
// because a partially loaded table would silently drop hosts.
func New(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no rule entries", ErrRuleSource)
	}

	byHost := make(map[string]Entry, len(entries))
	hosts := make([]string, 0, len(entries))

	for i, e := range entries {
		host := canonicalHost(e.Host)
		if host == "" {
			return nil, fmt.Errorf("%w: entry %d has no host", ErrRuleSource, i)
		}
		if !knownParsers[e.Parser] {
			return nil, fmt.Errorf("%w: host %q has unknown parser %q", ErrRuleSource, host, e.Parser)
		}
		if e.Parser == ParserScript && strings.TrimSpace(e.Script) == "" {
			return nil, fmt.Errorf("%w: host %q uses the script parser but has no script", ErrRuleSource, host)
		}
		if (e.Parser == ParserSelectors || e.Parser == ParserXPath) && e.Selectors.Price == "" {
			return nil, fmt.Errorf("%w: host %q has no price selector", ErrRuleSource, host)
		}
		if _, dup := byHost[host]; dup {
			return nil, fmt.Errorf("%w: duplicate entry for host %q", ErrRuleSource, host)
		}

		e.Host = host
		byHost[host] = e
		hosts = append(hosts, host)
	}

	sort.Strings(hosts)

	return &Table{entries: byHost, hosts: hosts}, nil
}

// Parse builds a Table from YAML source bytes.
func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleSource, err)
	}
	return New(f.Rules)
}

// Load reads and parses a YAML rules file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided rules path is intentional
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleSource, err)
	}
	return Parse(data)
}

// Default returns the table built from the embedded rules source.
// It panics if the embedded source does not parse; that is a build
// defect, caught by tests, not a runtime condition.
func Default() *Table {
	t, err := Parse(defaultSource)
	if err != nil {
		panic(fmt.Sprintf("embedded rules source: %v", err))
	}
	return t
}

// DefaultSource returns a copy of the embedded rules source, used by
// the init command to write a starter rules file.
func DefaultSource() []byte {
	out := make([]byte, len(defaultSource))
	copy(out, defaultSource)
	return out
}

// canonicalHost normalizes a rule host the way URL normalization
// treats hosts, so membership checks hold from both sides.
func canonicalHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(h, "www.")
}

// Lookup returns the entry for a canonical hostname.
func (t *Table) Lookup(host string) (Entry, bool) {
	e, ok := t.entries[host]
	return e, ok
}

// ColorOf returns the display color for a canonical hostname.
func (t *Table) ColorOf(host string) (Color, bool) {
	e, ok := t.entries[host]
	if !ok {
		return "", false
	}
	return e.Color, true
}

// SupportedHosts returns the supported hostnames in sorted order.
// The slice is a copy; callers may keep or modify it.
func (t *Table) SupportedHosts() []string {
	out := make([]string, len(t.hosts))
	copy(out, t.hosts)
	return out
}

// Len returns the number of rule entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// IsSupportedURL reports whether the raw URL's canonical hostname has
// a rule entry. Unparseable input is simply unsupported; this is the
// admission gate run before any fetch or persistence work.
func (t *Table) IsSupportedURL(raw string) bool {
	host := urlkey.Hostname(raw)
	if host == "" {
		return false
	}
	_, ok := t.entries[host]
	return ok
}
