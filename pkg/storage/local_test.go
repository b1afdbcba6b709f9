package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	res, err := store.Put(ctx, "media/2024/01/01/abc.png", strings.NewReader("png-bytes"), "image/png", 9)
	require.NoError(t, err)
	assert.Equal(t, "local://media/2024/01/01/abc.png", res.URL)
	assert.EqualValues(t, 9, res.Size)
	assert.True(t, store.Owns(res.URL))
	assert.False(t, store.Owns("https://example.com/a.png"))

	redirect, err := store.Resolve(ctx, res.URL)
	require.NoError(t, err)
	assert.Empty(t, redirect)

	rc, err := store.Open(ctx, res.URL)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png-bytes", string(body))

	require.NoError(t, store.Delete(ctx, res.URL))
	_, err = store.Open(ctx, res.URL)
	assert.ErrorIs(t, err, ErrBlobNotFound)

	// deleting again is not an error
	assert.NoError(t, store.Delete(ctx, res.URL, "https://elsewhere.example/x"))
}

func TestLocalStore_PathTraversalStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	p, ok := store.path("local://../../etc/passwd")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(p, root))
}

func TestGenerateKey(t *testing.T) {
	key := GenerateKey("media", "id123", "Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "media/"))
	assert.True(t, strings.HasSuffix(key, "/id123.jpg"))
}
