package rewrite

import "strings"

// MediaClass is the dispatch key the Static Rewriter uses to pick a
// sub-rewriter.
type MediaClass int

const (
	// MediaOpaque payloads pass through unchanged.
	MediaOpaque MediaClass = iota
	MediaHTML
	MediaCSS
	MediaJSClassic
	MediaJSModule
)

// InferMediaClass classifies a record by combining signals: an
// authoritative WARC-Resource-Type wins when present, falling back to
// the declared Content-Type.
func InferMediaClass(resourceType, contentType string) MediaClass {
	switch strings.ToLower(strings.TrimSpace(resourceType)) {
	case "document":
		return MediaHTML
	case "stylesheet":
		return MediaCSS
	case "script":
		return MediaJSClassic
	}

	ct := strings.ToLower(contentType)
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = ct[:idx]
	}
	ct = strings.TrimSpace(ct)

	switch {
	case ct == "text/html" || ct == "application/xhtml+xml":
		return MediaHTML
	case ct == "text/css":
		return MediaCSS
	case ct == "text/javascript" || ct == "application/javascript" ||
		ct == "application/x-javascript" || ct == "module":
		return MediaJSClassic
	default:
		return MediaOpaque
	}
}

// ModuleTracker implements a module-propagation state machine: a script
// discovered as `<script type="module" src=X>` is recorded as JS-module,
// and every import it resolves propagates the classification
// transitively. It assumes records arrive in fetch order -- a script
// observed before its importer is conservatively classified as classic.
type ModuleTracker struct {
	modules map[string]bool
}

// NewModuleTracker creates an empty tracker.
func NewModuleTracker() *ModuleTracker {
	return &ModuleTracker{modules: make(map[string]bool)}
}

// MarkModule records canonicalPath as a JS-module. It records only that
// one path; imports are marked by separate calls (the caller resolves and
// canonicalizes each specifier before calling this).
func (t *ModuleTracker) MarkModule(canonicalPath string) {
	t.modules[canonicalPath] = true
}

// IsModule reports whether canonicalPath was ever marked as a module.
// Unmarked scripts default to classic.
func (t *ModuleTracker) IsModule(canonicalPath string) bool {
	return t.modules[canonicalPath]
}
