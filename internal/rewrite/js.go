package rewrite

import (
	"regexp"
	"strings"
)

// jsURLLiteral matches single- or double-quoted string literals that start
// like a URL (http(s)://, //, /, ../ or ./); URLs outside a string literal
// are not matched.
var jsURLLiteral = regexp.MustCompile(`'((?:https?://|//|/|\.\./|\./)[^'"\s]*)'|"((?:https?://|//|/|\.\./|\./)[^'"\s]*)"`)

// jsModuleImport matches ES module import/export specifiers: `import ... from "spec"`,
// bare `import "spec"`, and `export ... from "spec"`.
var jsModuleImport = regexp.MustCompile(`(?m)\b(import|export)\b([^;'"]*?\bfrom\s*)?(['"])([^'"]+)(['"])`)

// jsonpWrapper matches a top-level JSONP callback wrapper: `name({...})` or
// `name([...])`, optionally terminated with a semicolon.
var jsonpWrapper = regexp.MustCompile(`(?s)^\s*([A-Za-z_$][\w$.]*)\s*\((\{.*\}|\[.*\])\)\s*;?\s*$`)

// JSRewriter rewrites URL-bearing string literals in JS source text
// without parsing an AST.
type JSRewriter struct {
	pipeline *Pipeline
	modules  *ModuleTracker
}

// NewJSRewriter builds a JSRewriter over a shared pipeline. modules may be
// nil, in which case modules imported transitively from this script are
// never marked.
func NewJSRewriter(p *Pipeline, modules *ModuleTracker) *JSRewriter {
	return &JSRewriter{pipeline: p, modules: modules}
}

// Rewrite rewrites js source against doc. isModule selects the
// import-specifier rules: bare specifiers left untouched, relative and
// absolute specifiers rewritten and, whenever they canonicalize (whether or
// not the target is in the known-path set), marked as JS-module in the
// shared tracker so the import is
// classified correctly even if it's never reached via a <script> tag.
func (r *JSRewriter) Rewrite(js string, doc DocumentContext, isModule bool) string {
	if m := jsonpWrapper.FindStringSubmatch(js); m != nil {
		name, body := m[1], m[2]
		rewrittenBody := r.rewriteLiterals(body, doc)
		return name + "(" + rewrittenBody + ");"
	}

	if isModule {
		js = jsModuleImport.ReplaceAllStringFunc(js, func(match string) string {
			sub := jsModuleImport.FindStringSubmatch(match)
			if sub == nil {
				return match
			}
			spec := sub[4]
			if !isModuleSpecifierRewritable(spec) {
				return match
			}
			if r.modules != nil {
				if target, err := r.pipeline.CanonicalizeReference(spec, doc); err == nil {
					r.modules.MarkModule(string(target))
				}
			}
			rewritten, ok := r.rewriteRef(spec, doc)
			if !ok {
				return match
			}
			return strings.Replace(match, sub[3]+spec+sub[5], sub[3]+rewritten+sub[5], 1)
		})
	}

	return r.rewriteLiterals(js, doc)
}

// isModuleSpecifierRewritable reports whether a module specifier is
// relative or absolute (and therefore rewritable) as opposed to bare,
// e.g. "lodash" or "@scope/pkg", which stays untouched because it
// resolves via an import map the rewriter has no visibility into.
func isModuleSpecifierRewritable(spec string) bool {
	switch ClassifyReference(spec) {
	case RefAbsoluteScheme, RefSchemeRelative, RefAbsolutePath:
		return true
	case RefRelative:
		return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
	default:
		return false
	}
}

func (r *JSRewriter) rewriteLiterals(js string, doc DocumentContext) string {
	return jsURLLiteral.ReplaceAllStringFunc(js, func(match string) string {
		sub := jsURLLiteral.FindStringSubmatch(match)
		if sub == nil {
			return match
		}
		quote, ref := "'", sub[1]
		if sub[1] == "" {
			quote, ref = "\"", sub[2]
		}
		rewritten, ok := r.rewriteRef(ref, doc)
		if !ok {
			return match
		}
		return quote + rewritten + quote
	})
}

func (r *JSRewriter) rewriteRef(ref string, doc DocumentContext) (string, bool) {
	rewritten, ok, err := r.pipeline.RewriteRelative(ref, doc)
	if err != nil || !ok {
		return ref, false
	}
	return rewritten, true
}
