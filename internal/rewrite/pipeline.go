// Package rewrite implements the common reference-resolution pipeline
// shared by the static HTML/CSS/JS rewriter and the dynamic rewriter
// helper's Go-side reference model.
package rewrite

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/openzim/warc2zim/internal/urlcanon"
	"github.com/openzim/warc2zim/internal/zimpath"
)

// DocumentContext carries the three pieces of state the pipeline needs to
// resolve a reference found inside one document.
type DocumentContext struct {
	// OriginalURL is the document's own pre-rewrite absolute URL; it is the
	// base against which relative references resolve.
	OriginalURL string
	// CanonicalPath is the document's own canonical path,
	// used to compute "../" depth for bundle-relative links.
	CanonicalPath zimpath.Path
	// BundlePrefix roots the absolute links the dynamic helper emits, e.g.
	// "http://library/content/myzim/".
	BundlePrefix string
}

// Pipeline resolves, canonicalizes and relocates references. It has no
// mutable state of its own beyond its collaborators, so a single instance
// is safe to share across an entire conversion run.
type Pipeline struct {
	canon *urlcanon.Canonicalizer
	known *zimpath.Set
}

// New builds a Pipeline over a canonicalizer and the set of paths already
// known to exist in the bundle (exposed through IsKnown, never consulted to
// gate rewriting -- every reference is rewritten regardless of whether its
// target was actually captured).
func New(canon *urlcanon.Canonicalizer, known *zimpath.Set) *Pipeline {
	return &Pipeline{canon: canon, known: known}
}

// ResolveAbsolute resolves ref against base (plain RFC 3986 resolution,
// no canonicalization) -- used by callers that need to update the
// effective document base, such as the HTML rewriter's <base> handling.
func ResolveAbsolute(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("rewrite: parsing base %q: %w", base, err)
	}
	relURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("rewrite: parsing reference %q: %w", ref, err)
	}
	return baseURL.ResolveReference(relURL).String(), nil
}

// IsKnown reports whether path was captured in this run.
func (p *Pipeline) IsKnown(path zimpath.Path) bool {
	if p.known == nil {
		return false
	}
	return p.known.Has(path)
}

// resolveAndCanonicalize implements steps 1-2 of the common pipeline:
// resolve ref against the document's own URL, then canonicalize it.
func (p *Pipeline) resolveAndCanonicalize(ref string, doc DocumentContext) (zimpath.Path, error) {
	base, err := url.Parse(doc.OriginalURL)
	if err != nil {
		return "", fmt.Errorf("rewrite: parsing document URL %q: %w", doc.OriginalURL, err)
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("rewrite: parsing reference %q: %w", ref, err)
	}
	abs := base.ResolveReference(rel)
	return p.canon.Canonicalize(abs.String())
}

// CanonicalizeReference resolves ref against doc and canonicalizes it,
// without relocating it -- used by callers that need the target's
// canonical path itself, such as JS-module propagation tracking.
func (p *Pipeline) CanonicalizeReference(ref string, doc DocumentContext) (zimpath.Path, error) {
	return p.resolveAndCanonicalize(ref, doc)
}

// RewriteRelative implements the Static Rewriter's pipeline:
// references are rewritten to bundle-relative links climbing "../" from
// the document's own canonical path. The returned bool reports whether
// rewriting actually happened (false means ref is returned verbatim,
// either because it does not need rewriting or because it already looks
// rewritten).
func (p *Pipeline) RewriteRelative(ref string, doc DocumentContext) (string, bool, error) {
	kind := ClassifyReference(ref)
	if !kind.IsRewritable() {
		return ref, false, nil
	}
	if kind == RefRelative && IsAlreadyRewritten(ref, doc.OriginalURL) {
		return ref, false, nil
	}

	target, err := p.resolveAndCanonicalize(ref, doc)
	if err != nil {
		return ref, false, err
	}
	return RelativeLink(doc.CanonicalPath, target), true, nil
}

// RewriteAbsolute is the Dynamic Rewriter Helper's counterpart to
// RewriteRelative: references are rewritten to bundle_prefix-rooted
// absolute URLs, since the helper runs inside live DOM contexts with no
// fixed notion of "relative to this document".
func (p *Pipeline) RewriteAbsolute(ref string, doc DocumentContext) (string, bool, error) {
	kind := ClassifyReference(ref)
	if !kind.IsRewritable() {
		return ref, false, nil
	}
	if IsAlreadyRewritten(ref, doc.OriginalURL) {
		return ref, false, nil
	}

	target, err := p.resolveAndCanonicalize(ref, doc)
	if err != nil {
		return ref, false, err
	}
	return doc.BundlePrefix + percentEncodeForWire(string(target)), true, nil
}

// RelativeLink computes the bundle-relative link from doc's own canonical
// path to target's canonical path: find the longest
// shared directory prefix, climb "../" past whatever in doc's directory
// isn't shared, then descend into whatever in target isn't shared. A
// same-directory result is prefixed with "./" rather than left bare, both
// to match convention and to avoid a leading segment that contains ":"
// being misread as a URI scheme.
func RelativeLink(doc, target zimpath.Path) string {
	docPath, _, _ := splitPathQuery(doc)
	targetPath, targetQuery, hasQuery := splitPathQuery(target)

	docSegs := strings.Split(docPath, "/")
	targetSegs := strings.Split(targetPath, "/")

	var docDir []string
	if len(docSegs) > 0 {
		docDir = docSegs[:len(docSegs)-1]
	}

	common := 0
	for common < len(docDir) && common < len(targetSegs) && docDir[common] == targetSegs[common] {
		common++
	}

	remainingUp := len(docDir) - common
	remainingDown := targetSegs[common:]

	var prefix string
	if remainingUp == 0 {
		prefix = "./"
	} else {
		prefix = strings.Repeat("../", remainingUp)
	}

	rest := strings.Join(remainingDown, "/")
	if hasQuery {
		rest += "?" + targetQuery
	}
	return prefix + percentEncodeForWire(rest)
}

// splitPathQuery splits a canonical path's query suffix off, since query
// depth never participates in directory-depth arithmetic.
func splitPathQuery(p zimpath.Path) (path string, query string, hasQuery bool) {
	s := string(p)
	if idx := strings.IndexByte(s, '?'); idx >= 0 {
		return s[:idx], s[idx+1:], true
	}
	return s, "", false
}

// percentEncodeForWire encodes every octet outside the RFC 3986 unreserved
// set, except "/" (which stays a literal path separator) and ":" (which
// stays literal so titles like "File:Kiwix_logo_v3.svg" survive
// unmangled). This catches "?" and "=" automatically, since neither is
// unreserved, which is what keeps a folded query string from being
// reinterpreted by whatever consumes the rewritten link as a real
// delimiter.
func percentEncodeForWire(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedByte(c) || c == '/' || c == ':' {
			sb.WriteByte(c)
		} else {
			fmt.Fprintf(&sb, "%%%02X", c)
		}
	}
	return sb.String()
}

func isUnreservedByte(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	default:
		return false
	}
}
