package record

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_Identity(t *testing.T) {
	got, err := DecodePayload("", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestDecodePayload_Gzip(t *testing.T) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte("hello gzip"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := DecodePayload("gzip", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte("hello gzip"), got)
}

func TestDecodePayload_Brotli(t *testing.T) {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte("hello brotli"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := DecodePayload("br", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte("hello brotli"), got)
}

func TestDecodePayload_UnsupportedEncodingErrors(t *testing.T) {
	_, err := DecodePayload("deflate", []byte("x"))
	assert.Error(t, err)
}

func TestSniffText_PassesThroughValidUTF8(t *testing.T) {
	got, err := SniffText([]byte("<html>héllo</html>"), "text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Contains(t, string(got), "héllo")
}

func TestContentDigest_Deterministic(t *testing.T) {
	a := ContentDigest([]byte("same content"))
	b := ContentDigest([]byte("same content"))
	c := ContentDigest([]byte("different content"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
