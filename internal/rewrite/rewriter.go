package rewrite

// Rewriter dispatches a payload to the appropriate sub-rewriter by media
// class. It is the single entry point the converter's pass 2
// calls for every record.
type Rewriter struct {
	pipeline *Pipeline
	html     *HTMLRewriter
	css      *CSSRewriter
	js       *JSRewriter
	modules  *ModuleTracker
}

// NewRewriter builds a Rewriter sharing one pipeline and module tracker across
// all three sub-rewriters, so module propagation state and the
// known-path set stay consistent for the whole conversion run.
func NewRewriter(p *Pipeline) *Rewriter {
	modules := NewModuleTracker()
	return &Rewriter{
		pipeline: p,
		html:     NewHTMLRewriter(p, modules),
		css:      NewCSSRewriter(p),
		js:       NewJSRewriter(p, modules),
		modules:  modules,
	}
}

// Rewrite transforms payload according to class. HTML and CSS always
// take the same path; JS dispatches to classic or module handling by
// class alone (MediaJSModule selects module handling; the caller decides
// the class, e.g. by consulting Modules()). Opaque payloads are returned
// unchanged.
func (r *Rewriter) Rewrite(class MediaClass, payload []byte, doc DocumentContext, inject HeadInjection) ([]byte, error) {
	switch class {
	case MediaHTML:
		return r.html.Rewrite(payload, doc, inject)
	case MediaCSS:
		return []byte(r.css.Rewrite(string(payload), doc)), nil
	case MediaJSClassic:
		return []byte(r.js.Rewrite(string(payload), doc, false)), nil
	case MediaJSModule:
		return []byte(r.js.Rewrite(string(payload), doc, true)), nil
	default:
		return payload, nil
	}
}

// Modules exposes the shared module tracker so the converter can query it
// when deciding between MediaJSClassic and MediaJSModule for a given
// script record.
func (r *Rewriter) Modules() *ModuleTracker {
	return r.modules
}
