// Package dynhelper implements the Go-side half of the Dynamic Rewriter
// Helper: it builds the configuration record consumed by the
// in-page interception library and emits the embedded JS asset bytes:
// fuzzy_rules.js, generated from the single rule source in internal/fuzzy,
// and the hand-written runtime.js.
package dynhelper

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/openzim/warc2zim/internal/rewrite"
	"github.com/openzim/warc2zim/internal/zimpath"
)

//go:embed static/fuzzy_rules.js static/runtime.js
var staticFS embed.FS

// AssetNames lists the static assets emitted under zimpath.ReservedStaticPrefix,
// in load order (fuzzy_rules.js defines the globals runtime.js consumes).
var AssetNames = []string{"fuzzy_rules.js", "runtime.js"}

// Asset returns the bytes of one of AssetNames.
func Asset(name string) ([]byte, error) {
	return staticFS.ReadFile("static/" + name)
}

// ReservedPath returns the canonical path under which a static asset is
// stored in the bundle.
func ReservedPath(name string) zimpath.Path {
	return zimpath.Path(zimpath.ReservedStaticPrefix + name)
}

// Config is the configuration record `info()` returns. JSON
// tags match the option names the in-page interception library expects.
type Config struct {
	RewriteFunction   string `json:"rewrite_function"`
	TopURL            string `json:"top_url"`
	URL               string `json:"url"`
	Prefix            string `json:"prefix"`
	StaticPrefix      string `json:"static_prefix"`
	WombatHost        string `json:"wombat_host"`
	WombatScheme      string `json:"wombat_scheme"`
	WombatSec         int    `json:"wombat_sec"`
	IsFramed          bool   `json:"is_framed"`
	IsLive            bool   `json:"is_live"`
	EnableAutoFetch   bool   `json:"enable_auto_fetch"`
	ConvertPostToGet  bool   `json:"convert_post_to_get"`
	IsSW              bool   `json:"isSW"`
	TargetFrame       string `json:"target_frame"`
	Timestamp         string `json:"timestamp"`
	RequestTS         string `json:"request_ts"`
	WombatTS          string `json:"wombat_ts"`
	Coll              string `json:"coll"`
	ProxyMagic        string `json:"proxy_magic"`
	Mod               string `json:"mod"`
	WombatOpts        string `json:"wombat_opts"`
}

// BuildConfig assembles the configuration record for one document.
func BuildConfig(originalURL, originalHost, originalScheme, bundlePrefix string) Config {
	return Config{
		RewriteFunction:  "__warc2zim_rewrite",
		TopURL:           originalURL,
		URL:              originalURL,
		Prefix:           bundlePrefix,
		StaticPrefix:     bundlePrefix + zimpath.ReservedStaticPrefix,
		WombatHost:       originalHost,
		WombatScheme:     originalScheme,
		WombatSec:        0,
		IsFramed:         false,
		IsLive:           false,
		EnableAutoFetch:  false,
		ConvertPostToGet: false,
		IsSW:             false,
		TargetFrame:      "__warc2zim_iframe",
	}
}

// PreHeadSnippet renders the inline bootstrap script text (without the
// surrounding <script> tag, which rewrite.HTMLRewriter adds) that sets the
// document's config object before the runtime asset loads.
func (c Config) PreHeadSnippet() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("dynhelper: marshaling config: %w", err)
	}
	return fmt.Sprintf("window.__warc2zim_config = %s;", data), nil
}

// RuntimeScriptSrcs computes the document-relative links to the static
// runtime assets, for rewrite.HeadInjection.RuntimeScriptSrcs.
func RuntimeScriptSrcs(docCanonicalPath zimpath.Path) []string {
	out := make([]string, 0, len(AssetNames))
	for _, name := range AssetNames {
		out = append(out, rewrite.RelativeLink(docCanonicalPath, ReservedPath(name)))
	}
	return out
}
