package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openzim/warc2zim/internal/fuzzy"
	"github.com/openzim/warc2zim/internal/urlcanon"
	"github.com/openzim/warc2zim/internal/zimpath"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	engine, err := fuzzy.Default()
	require.NoError(t, err)
	return New(urlcanon.New(engine), zimpath.NewSet())
}

func TestRelativeLink_ClimbsOneLevel(t *testing.T) {
	got := RelativeLink("www.example.com/path1/resource1.html", "www.example.com/javascript/content.txt")
	assert.Equal(t, "../javascript/content.txt", got)
}

func TestRelativeLink_SameDirectoryUsesDotSlash(t *testing.T) {
	got := RelativeLink("en.wikipedia.org/wiki/Kiwix", "en.wikipedia.org/wiki/File:Kiwix_logo_v3.svg")
	assert.Equal(t, "./File:Kiwix_logo_v3.svg", got)
}

func TestRelativeLink_QueryIsFoldedAndEncoded(t *testing.T) {
	got := RelativeLink("www.example.com/path1/resource1.html", "www.example.com/javascript/content.txt?query=value")
	assert.Equal(t, "../javascript/content.txt%3Fquery%3Dvalue", got)
}

func TestRelativeLink_CrossHostClimbsPastHost(t *testing.T) {
	got := RelativeLink("www.example.com/path1/resource1.html", "anotherhost.com/javascript/content.txt")
	assert.Equal(t, "../../anotherhost.com/javascript/content.txt", got)
}

func TestRewriteRelative_AnchorPassesThrough(t *testing.T) {
	p := newTestPipeline(t)
	doc := DocumentContext{
		OriginalURL:   "https://www.example.com/path1/resource1.html",
		CanonicalPath: "www.example.com/path1/resource1.html",
	}
	got, rewritten, err := p.RewriteRelative("#top", doc)
	require.NoError(t, err)
	assert.False(t, rewritten)
	assert.Equal(t, "#top", got)
}

func TestRewriteRelative_AbsoluteReference(t *testing.T) {
	p := newTestPipeline(t)
	doc := DocumentContext{
		OriginalURL:   "https://www.example.com/path1/resource1.html",
		CanonicalPath: "www.example.com/path1/resource1.html",
	}
	got, rewritten, err := p.RewriteRelative("https://www.example.com/javascript/content.txt", doc)
	require.NoError(t, err)
	assert.True(t, rewritten)
	assert.Equal(t, "../javascript/content.txt", got)
}

func TestRewriteRelative_AlreadyRewrittenPassesThrough(t *testing.T) {
	p := newTestPipeline(t)
	doc := DocumentContext{
		OriginalURL:   "https://www.example.com/path1/resource1.html",
		CanonicalPath: "www.example.com/path1/resource1.html",
	}
	ref := "../../anotherhost.com/javascript/content.txt"
	got, rewritten, err := p.RewriteRelative(ref, doc)
	require.NoError(t, err)
	assert.False(t, rewritten)
	assert.Equal(t, ref, got)
}

func TestRewriteAbsolute_RootsAtBundlePrefix(t *testing.T) {
	p := newTestPipeline(t)
	doc := DocumentContext{
		OriginalURL:   "https://www.example.com/path1/resource1.html",
		CanonicalPath: "www.example.com/path1/resource1.html",
		BundlePrefix:  "http://library/content/myzim/",
	}
	got, rewritten, err := p.RewriteAbsolute("https://www.example.com/javascript/content.txt", doc)
	require.NoError(t, err)
	assert.True(t, rewritten)
	assert.Equal(t, "http://library/content/myzim/www.example.com/javascript/content.txt", got)
}

func TestRewriteAbsolute_QueryIsFoldedAndEncoded(t *testing.T) {
	p := newTestPipeline(t)
	doc := DocumentContext{
		OriginalURL:   "https://www.example.com/path1/resource1.html",
		CanonicalPath: "www.example.com/path1/resource1.html",
		BundlePrefix:  "http://library/content/myzim/",
	}
	got, rewritten, err := p.RewriteAbsolute("https://www.example.com/javascript/content.txt?query=value", doc)
	require.NoError(t, err)
	assert.True(t, rewritten)
	assert.Equal(t, "http://library/content/myzim/www.example.com/javascript/content.txt%3Fquery%3Dvalue", got)
}

func TestRewriteAbsolute_NonNavigationalPassesThrough(t *testing.T) {
	p := newTestPipeline(t)
	doc := DocumentContext{
		OriginalURL:  "https://www.example.com/path1/resource1.html",
		BundlePrefix: "http://library/content/myzim/",
	}
	got, rewritten, err := p.RewriteAbsolute("data:image/png;base64,xyz", doc)
	require.NoError(t, err)
	assert.False(t, rewritten)
	assert.Equal(t, "data:image/png;base64,xyz", got)
}
