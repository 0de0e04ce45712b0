package dynhelper

import "github.com/openzim/warc2zim/internal/rewrite"

// Rewrite is the Go-side reference model for the runtime asset's
// __warc2zim_rewrite: it is exactly rewrite.Pipeline.RewriteAbsolute,
// exposed under this package so tests can assert offline/online parity
// without needing a JS engine to execute static/runtime.js --
// both share the same pipeline, so they are the same logic by
// construction rather than by kept-in-sync duplication.
func Rewrite(p *rewrite.Pipeline, ref string, doc rewrite.DocumentContext) (string, bool, error) {
	return p.RewriteAbsolute(ref, doc)
}
