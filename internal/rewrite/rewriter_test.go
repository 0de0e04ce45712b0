package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openzim/warc2zim/internal/fuzzy"
	"github.com/openzim/warc2zim/internal/urlcanon"
	"github.com/openzim/warc2zim/internal/zimpath"
)

func newTestRewriter(t *testing.T) *Rewriter {
	t.Helper()
	engine, err := fuzzy.Default()
	require.NoError(t, err)
	return NewRewriter(New(urlcanon.New(engine), zimpath.NewSet()))
}

func TestRewriter_DispatchesByMediaClass(t *testing.T) {
	r := newTestRewriter(t)

	htmlOut, err := r.Rewrite(MediaHTML, []byte(`<html><body><a href="https://www.example.com/javascript/content.txt">x</a></body></html>`), testDoc(), HeadInjection{})
	require.NoError(t, err)
	assert.Contains(t, string(htmlOut), "../javascript/content.txt")

	cssOut, err := r.Rewrite(MediaCSS, []byte(`a{background:url("https://www.example.com/javascript/content.txt")}`), testDoc(), HeadInjection{})
	require.NoError(t, err)
	assert.Contains(t, string(cssOut), "../javascript/content.txt")

	jsOut, err := r.Rewrite(MediaJSClassic, []byte(`var x="https://www.example.com/javascript/content.txt";`), testDoc(), HeadInjection{})
	require.NoError(t, err)
	assert.Contains(t, string(jsOut), "../javascript/content.txt")

	opaque := []byte{0xFF, 0x00, 0x01}
	opaqueOut, err := r.Rewrite(MediaOpaque, opaque, testDoc(), HeadInjection{})
	require.NoError(t, err)
	assert.Equal(t, opaque, opaqueOut)
}

func TestRewriter_ModulesSharedAcrossCalls(t *testing.T) {
	r := newTestRewriter(t)
	r.Modules().MarkModule("www.example.com/a.js")
	assert.True(t, r.Modules().IsModule("www.example.com/a.js"))
}
