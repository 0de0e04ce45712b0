package record

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceStream_IteratesAndEnds(t *testing.T) {
	s := NewSliceStream([]Record{
		{TargetURI: "https://a.example/"},
		{TargetURI: "https://b.example/"},
	})
	ctx := context.Background()

	r1, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example/", r1.TargetURI)

	r2, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://b.example/", r2.TargetURI)

	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestSliceStream_ResetRewinds(t *testing.T) {
	s := NewSliceStream([]Record{{TargetURI: "https://a.example/"}})
	ctx := context.Background()

	_, err := s.Next(ctx)
	require.NoError(t, err)
	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, ErrEndOfStream)

	require.NoError(t, s.Reset())
	r, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example/", r.TargetURI)
}

func TestMemorySink_FirstWriterWins(t *testing.T) {
	sink := NewMemorySink()

	wrote, err := sink.Write("a.example/index.html", []byte("one"), "text/html")
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = sink.Write("a.example/index.html", []byte("two"), "text/html")
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Equal(t, []byte("one"), sink.Entries["a.example/index.html"])
}

func TestMemorySink_AliasDoesNotOverwriteEntry(t *testing.T) {
	sink := NewMemorySink()
	_, err := sink.Write("a.example/index.html", []byte("one"), "text/html")
	require.NoError(t, err)

	wrote, err := sink.Alias("a.example/index.html", "a.example/other.html")
	require.NoError(t, err)
	assert.False(t, wrote)
}
