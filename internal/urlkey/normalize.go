package urlkey

import (
	"fmt"
	"net/url"
	"strings"
)

// wwwPrefix is the host prefix stripped during normalization.
const wwwPrefix = "www."

// Normalize collapses a raw URL into its canonical form.
//
// The transform is a fixed pipeline, applied in order:
//  1. Force the scheme to https regardless of the original scheme
//  2. Strip any fragment
//  3. Lowercase the host and strip one leading "www."
//  4. Remove a single trailing "/" from the path (internal double
//     slashes are left alone)
//  5. Remove the entire query string
//
// The order and the individual rules are load-bearing: document IDs are
// hashes of the canonical form, so any change here changes every stored
// ID. Path case is preserved; many sites serve distinct pages for
// distinct path casing.
//
// Returns ErrInvalidURL when the input cannot be parsed or has no host.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	// url.Parse is lenient: plain text like "not a url" parses as a
	// bare path. A usable page URL always carries a host.
	if u.Host == "" {
		return "", fmt.Errorf("%w: no host in %q", ErrInvalidURL, raw)
	}

	u.Scheme = "https"

	u.Fragment = ""
	u.RawFragment = ""

	// Lowercase before stripping so "WWW." is caught too. url.Parse
	// lowercases the scheme but leaves the host exactly as written.
	host := strings.ToLower(u.Host)
	u.Host = strings.TrimPrefix(host, wwwPrefix)

	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = strings.TrimSuffix(u.RawPath, "/")

	u.RawQuery = ""
	u.ForceQuery = false

	return u.String(), nil
}

// Hostname returns the canonical hostname of a raw URL, without any
// port. It returns the empty string when the URL cannot be normalized.
//
// Design decision: Parse failure downgrades to "" instead of an error
// because Hostname feeds admission checks, where an unparseable URL and
// an unsupported host both mean "do not proceed". Callers that need to
// distinguish the two cases use Normalize directly.
func Hostname(raw string) string {
	canonical, err := Normalize(raw)
	if err != nil {
		return ""
	}

	u, err := url.Parse(canonical)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
