package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlobStore_PutAndGet(t *testing.T) {
	t.Parallel()

	s := New()
	uri, err := s.Put(context.Background(), "http___books_toscrape_com_", "text/html", []byte("<html></html>"))
	require.NoError(t, err)
	require.Equal(t, "mem://http___books_toscrape_com_", uri)
	require.Equal(t, 1, s.Len())

	data, ok := s.Get("http___books_toscrape_com_")
	require.True(t, ok)
	require.Equal(t, []byte("<html></html>"), data)

	_, ok = s.Get("missing")
	require.False(t, ok)
}

func TestBlobStore_PutOverwrites(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := s.Put(context.Background(), "k", "text/html", []byte("one"))
	require.NoError(t, err)
	_, err = s.Put(context.Background(), "k", "text/html", []byte("two"))
	require.NoError(t, err)

	data, ok := s.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("two"), data)
	require.Equal(t, 1, s.Len())
}
