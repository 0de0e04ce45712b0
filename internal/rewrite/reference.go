package rewrite

import (
	"net/url"
	"strings"
)

// RefKind classifies a URL-bearing token as discovered in an HTML
// attribute, a CSS url()/@import, or JS code.
type RefKind int

const (
	// RefAbsoluteScheme is "https://host/path" or similar.
	RefAbsoluteScheme RefKind = iota
	// RefSchemeRelative is "//host/path".
	RefSchemeRelative
	// RefAbsolutePath is "/path" (no host).
	RefAbsolutePath
	// RefRelative is "path" or "../path", resolved against the document URL.
	RefRelative
	// RefAnchor is "#fragment".
	RefAnchor
	// RefNonNavigational covers data:, blob:, mailto:, javascript:, about:,
	// tel: and templating sigils ({, *); it is never rewritten.
	RefNonNavigational
)

var nonNavigationalSchemes = []string{
	"data:", "blob:", "mailto:", "javascript:", "about:", "tel:",
}

// ClassifyReference classifies a raw reference string by scheme and
// shape: anchor-only, non-navigational scheme, or a navigable URL.
func ClassifyReference(ref string) RefKind {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return RefNonNavigational
	}
	if strings.HasPrefix(trimmed, "#") {
		return RefAnchor
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "*") {
		return RefNonNavigational
	}

	lower := strings.ToLower(trimmed)
	for _, scheme := range nonNavigationalSchemes {
		if strings.HasPrefix(lower, scheme) {
			return RefNonNavigational
		}
	}

	if strings.HasPrefix(trimmed, "//") {
		return RefSchemeRelative
	}
	if strings.HasPrefix(trimmed, "/") {
		return RefAbsolutePath
	}
	if u, err := url.Parse(trimmed); err == nil && u.Scheme != "" {
		return RefAbsoluteScheme
	}
	return RefRelative
}

// IsRewritable reports whether a reference of kind k ever goes through the
// common pipeline.
func (k RefKind) IsRewritable() bool {
	switch k {
	case RefAbsoluteScheme, RefSchemeRelative, RefAbsolutePath, RefRelative:
		return true
	default:
		return false
	}
}

// IsAlreadyRewritten reports whether a relative reference climbs, via
// "../" segments, exactly past
// the document's own host-as-path-segment depth, landing on what looks
// like a hostname. All three conditions must hold; any single one missing
// means the reference is rewritten normally.
func IsAlreadyRewritten(ref, documentURL string) bool {
	if !strings.HasPrefix(ref, "../") {
		return false
	}

	rest := ref
	upCount := 0
	for strings.HasPrefix(rest, "../") {
		rest = rest[len("../"):]
		upCount++
	}

	firstSeg := rest
	if idx := strings.IndexByte(firstSeg, '/'); idx >= 0 {
		firstSeg = firstSeg[:idx]
	}
	if !strings.Contains(firstSeg, ".") {
		return false
	}

	depth, ok := documentDirDepth(documentURL)
	if !ok {
		return false
	}

	return upCount == depth
}

// documentDirDepth returns the number of segments in the document's
// host-as-path-segment directory chain (host plus path directories,
// excluding the document's own last segment, which is the filename or the
// empty segment after a trailing "/") -- the same chain RelativeLink walks
// when computing "../" counts.
func documentDirDepth(documentURL string) (int, bool) {
	u, err := url.Parse(documentURL)
	if err != nil || u.Hostname() == "" {
		return 0, false
	}

	trimmed := strings.TrimLeft(u.EscapedPath(), "/")
	return strings.Count(trimmed, "/") + 1, true
}
