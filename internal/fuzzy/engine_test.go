package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEngineCompiles(t *testing.T) {
	engine, err := Default()
	require.NoError(t, err)
	assert.NotEmpty(t, engine.Rules())
}

func TestApply_YoutubeGetVideoInfo(t *testing.T) {
	engine, err := Default()
	require.NoError(t, err)

	got := engine.Apply("www.youtube.com/get_video_info?video_id=123ah")
	assert.Equal(t, "youtube.fuzzy.replayweb.page/get_video_info?video_id=123ah", got)
}

func TestApply_YtimgThumbnail(t *testing.T) {
	engine, err := Default()
	require.NoError(t, err)

	got := engine.Apply("i.ytimg.com/vi/-KpLmsAR23I/maxresdefault.jpg?sqp=abc")
	assert.Equal(t, "i.ytimg.com.fuzzy.replayweb.page/vi/-KpLmsAR23I/thumbnail.jpg", got)
}

func TestApply_NoMatchPassesThrough(t *testing.T) {
	engine, err := Default()
	require.NoError(t, err)

	got := engine.Apply("example.com/path/to/article?foo=bar")
	assert.Equal(t, "example.com/path/to/article?foo=bar", got)
}

func TestApply_Idempotent(t *testing.T) {
	engine, err := Default()
	require.NoError(t, err)

	once := engine.Apply("www.youtube.com/get_video_info?video_id=123ah")
	twice := engine.Apply(once)
	assert.Equal(t, once, twice)
}

func TestApply_TrimTrailingNumericQuery(t *testing.T) {
	engine, err := Default()
	require.NoError(t, err)

	got := engine.Apply("example.com/ping?1234567890")
	assert.Equal(t, "example.com/ping?", got)
}

func TestLoad_InvalidRegexErrors(t *testing.T) {
	_, err := Load([]byte("rules:\n  - name: bad\n    match: \"(unterminated\"\n    replace: \"x\"\n"))
	assert.Error(t, err)
}

func TestNew_EmptyRuleListIsNoop(t *testing.T) {
	engine := New(nil)
	assert.Equal(t, "example.com/a", engine.Apply("example.com/a"))
}

func TestApply_NilEngineIsNoop(t *testing.T) {
	var engine *Engine
	assert.Equal(t, "example.com/a", engine.Apply("example.com/a"))
}
