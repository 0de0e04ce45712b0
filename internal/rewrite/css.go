package rewrite

import (
	"regexp"
)

// CSS url()/@import patterns: three shapes for url() (double-quoted,
// single-quoted, bare) and two for @import. Anything that doesn't match
// one of these five shapes -- selectors, declarations, @charset, a BOM --
// passes through untouched, by construction. The patterns do not skip CSS
// comments: a url() written inside a comment is rewritten like any other.
var (
	cssURLDouble  = regexp.MustCompile(`(?i)url\(\s*"([^"]*)"\s*\)`)
	cssURLSingle  = regexp.MustCompile(`(?i)url\(\s*'([^']*)'\s*\)`)
	cssURLBare    = regexp.MustCompile(`(?i)url\(\s*([^)'"\s][^)]*?)\s*\)`)
	cssImportDbl  = regexp.MustCompile(`(?i)@import\s+"([^"]*)"`)
	cssImportSgl  = regexp.MustCompile(`(?i)@import\s+'([^']*)'`)
)

// CSSRewriter rewrites url() and @import references in a stylesheet or an
// inline style attribute/declaration block.
type CSSRewriter struct {
	pipeline *Pipeline
}

// NewCSSRewriter builds a CSSRewriter over a shared pipeline.
func NewCSSRewriter(p *Pipeline) *CSSRewriter {
	return &CSSRewriter{pipeline: p}
}

// Rewrite rewrites every url()/@import reference in css against doc,
// producing a bundle-relative result.
func (r *CSSRewriter) Rewrite(css string, doc DocumentContext) string {
	css = r.rewriteURLRegex(cssURLDouble, css, doc, `"`)
	css = r.rewriteURLRegex(cssURLSingle, css, doc, `'`)
	css = r.rewriteURLRegex(cssURLBare, css, doc, `"`)
	css = r.rewriteImportRegex(cssImportDbl, css, doc, `"`)
	css = r.rewriteImportRegex(cssImportSgl, css, doc, `'`)
	return css
}

func (r *CSSRewriter) rewriteURLRegex(re *regexp.Regexp, css string, doc DocumentContext, quote string) string {
	return re.ReplaceAllStringFunc(css, func(match string) string {
		sub := re.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		rewritten, ok := r.rewriteRef(sub[1], doc)
		if !ok {
			return match
		}
		return "url(" + quote + rewritten + quote + ")"
	})
}

func (r *CSSRewriter) rewriteImportRegex(re *regexp.Regexp, css string, doc DocumentContext, quote string) string {
	return re.ReplaceAllStringFunc(css, func(match string) string {
		sub := re.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		rewritten, ok := r.rewriteRef(sub[1], doc)
		if !ok {
			return match
		}
		return "@import " + quote + rewritten + quote
	})
}

func (r *CSSRewriter) rewriteRef(ref string, doc DocumentContext) (string, bool) {
	rewritten, ok, err := r.pipeline.RewriteRelative(ref, doc)
	if err != nil || !ok {
		return ref, false
	}
	return rewritten, true
}
