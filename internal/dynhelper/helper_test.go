package dynhelper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openzim/warc2zim/internal/fuzzy"
	"github.com/openzim/warc2zim/internal/rewrite"
	"github.com/openzim/warc2zim/internal/urlcanon"
	"github.com/openzim/warc2zim/internal/zimpath"
)

func newTestPipeline(t *testing.T) *rewrite.Pipeline {
	t.Helper()
	engine, err := fuzzy.Default()
	require.NoError(t, err)
	return rewrite.New(urlcanon.New(engine), zimpath.NewSet())
}

func TestBuildConfig_Fields(t *testing.T) {
	cfg := BuildConfig("https://www.example.com/a.html", "www.example.com", "https", "http://library/content/myzim/")
	assert.Equal(t, "https://www.example.com/a.html", cfg.URL)
	assert.Equal(t, "http://library/content/myzim/", cfg.Prefix)
	assert.Equal(t, "http://library/content/myzim/_zim_static/", cfg.StaticPrefix)
	assert.Equal(t, "www.example.com", cfg.WombatHost)
	assert.Equal(t, "https", cfg.WombatScheme)
}

func TestPreHeadSnippet_ValidJSON(t *testing.T) {
	cfg := BuildConfig("https://www.example.com/a.html", "www.example.com", "https", "http://library/content/myzim/")
	snippet, err := cfg.PreHeadSnippet()
	require.NoError(t, err)
	assert.Contains(t, snippet, "window.__warc2zim_config =")

	jsonPart := snippet[len("window.__warc2zim_config = ") : len(snippet)-1]
	var roundTrip Config
	require.NoError(t, json.Unmarshal([]byte(jsonPart), &roundTrip))
	assert.Equal(t, cfg, roundTrip)
}

func TestAsset_AllNamesReadable(t *testing.T) {
	for _, name := range AssetNames {
		data, err := Asset(name)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}
}

func TestReservedPath_UnderStaticPrefix(t *testing.T) {
	p := ReservedPath("runtime.js")
	assert.True(t, p.IsReserved())
}

func TestRuntimeScriptSrcs_RelativeToDocument(t *testing.T) {
	srcs := RuntimeScriptSrcs(zimpath.Path("www.example.com/path1/resource1.html"))
	require.Len(t, srcs, 2)
	assert.Contains(t, srcs[0], "fuzzy_rules.js")
	assert.Contains(t, srcs[1], "runtime.js")
}

func TestRewrite_MatchesStaticPipelineUnderAbsoluteFraming(t *testing.T) {
	p := newTestPipeline(t)
	doc := rewrite.DocumentContext{
		OriginalURL:   "https://www.example.com/path1/resource1.html",
		CanonicalPath: "www.example.com/path1/resource1.html",
		BundlePrefix:  "http://library/content/myzim/",
	}
	got, rewritten, err := Rewrite(p, "https://www.example.com/javascript/content.txt", doc)
	require.NoError(t, err)
	assert.True(t, rewritten)
	assert.Equal(t, "http://library/content/myzim/www.example.com/javascript/content.txt", got)
}
