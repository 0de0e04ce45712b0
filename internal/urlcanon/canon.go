// Package urlcanon implements the URL Canonicalizer: it turns a
// captured absolute URL into the canonical internal path used to address
// entries in the bundle, then hands the result to the Fuzzy Rule Engine.
package urlcanon

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"

	"github.com/openzim/warc2zim/internal/fuzzy"
	"github.com/openzim/warc2zim/internal/zimpath"
)

// ErrInvalidURL is returned when a URL cannot be canonicalized: unparseable,
// carrying a scheme other than http/https, or missing a host.
var ErrInvalidURL = errors.New("urlcanon: invalid url")

var collapseSlashesRx = regexp.MustCompile(`/{2,}`)

// Canonicalizer turns absolute URLs into canonical paths. It is stateless
// apart from the injected fuzzy rule engine, so it is safe for reuse across
// both passes of a conversion.
type Canonicalizer struct {
	Rules *fuzzy.Engine
}

// New builds a Canonicalizer backed by rules. A nil engine behaves as if
// every rule were a no-op (no fuzzy reduction is applied).
func New(rules *fuzzy.Engine) *Canonicalizer {
	return &Canonicalizer{Rules: rules}
}

// Canonicalize parses rawURL, validates its scheme and host, normalizes
// the host and path, folds the result through the fuzzy rule engine, and
// returns the resulting canonical path.
func (c *Canonicalizer) Canonicalize(rawURL string) (zimpath.Path, error) {
	if rawURL == "" {
		return "", fmt.Errorf("%w: empty url", ErrInvalidURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	host = normalizeHost(host)

	decodedPath, err := url.PathUnescape(u.EscapedPath())
	if err != nil {
		// Malformed percent-encoding: fall back to the raw path rather than
		// failing the whole record.
		decodedPath = u.EscapedPath()
	}
	if decodedPath == "" {
		decodedPath = "/"
	}

	combined := decodedPath
	if u.RawQuery != "" {
		decodedQuery, err := decodeQuery(u.RawQuery)
		if err != nil {
			decodedQuery = u.RawQuery
		}
		combined = combined + "?" + decodedQuery
	}

	combined = collapseSlashesRx.ReplaceAllString(combined, "/")

	path := host + combined
	if c.Rules != nil {
		path = c.Rules.Apply(path)
	}

	return zimpath.Path(norm.NFC.String(path)), nil
}

// decodeQuery percent-decodes a raw query string once, turning "+" into a
// literal space, unlike decodedPath which keeps "+" as-is.
func decodeQuery(raw string) (string, error) {
	return url.QueryUnescape(raw)
}

// normalizeHost lower-cases host and decodes any punycode (xn--...) labels
// back to their Unicode form.
func normalizeHost(host string) string {
	host = strings.ToLower(host)
	if unicodeHost, err := idna.ToUnicode(host); err == nil {
		host = unicodeHost
	}
	return norm.NFC.String(host)
}
