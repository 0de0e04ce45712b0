package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferMediaClass_ResourceTypeWins(t *testing.T) {
	assert.Equal(t, MediaHTML, InferMediaClass("document", "application/octet-stream"))
	assert.Equal(t, MediaCSS, InferMediaClass("stylesheet", "text/plain"))
	assert.Equal(t, MediaJSClassic, InferMediaClass("script", "text/plain"))
}

func TestInferMediaClass_FallsBackToContentType(t *testing.T) {
	assert.Equal(t, MediaHTML, InferMediaClass("", "text/html; charset=utf-8"))
	assert.Equal(t, MediaCSS, InferMediaClass("", "text/css"))
	assert.Equal(t, MediaJSClassic, InferMediaClass("", "application/javascript"))
	assert.Equal(t, MediaOpaque, InferMediaClass("", "image/png"))
}

func TestModuleTracker_MarkAndQuery(t *testing.T) {
	tr := NewModuleTracker()
	assert.False(t, tr.IsModule("www.example.com/a.js"))
	tr.MarkModule("www.example.com/a.js")
	assert.True(t, tr.IsModule("www.example.com/a.js"))
	assert.False(t, tr.IsModule("www.example.com/b.js"))
}
