package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSink_WritesFileAndIsFirstWriterWins(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDirSink(dir, nil)
	require.NoError(t, err)

	wrote, err := sink.Write("www.example.com/a.html", []byte("one"), "text/html")
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = sink.Write("www.example.com/a.html", []byte("two"), "text/html")
	require.NoError(t, err)
	assert.False(t, wrote)

	data, err := os.ReadFile(filepath.Join(dir, "www.example.com", "a.html"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestDirSink_AliasWritesMarkerFile(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDirSink(dir, nil)
	require.NoError(t, err)

	wrote, err := sink.Alias("www.example.com/old.html", "www.example.com/new.html")
	require.NoError(t, err)
	assert.True(t, wrote)

	data, err := os.ReadFile(filepath.Join(dir, "www.example.com", "old.html.alias"))
	require.NoError(t, err)
	assert.Equal(t, "www.example.com/new.html", string(data))
}

func TestDirSink_AliasDoesNotOverwriteExistingWrite(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDirSink(dir, nil)
	require.NoError(t, err)

	_, err = sink.Write("www.example.com/a.html", []byte("content"), "text/html")
	require.NoError(t, err)

	wrote, err := sink.Alias("www.example.com/a.html", "www.example.com/b.html")
	require.NoError(t, err)
	assert.False(t, wrote)
}
