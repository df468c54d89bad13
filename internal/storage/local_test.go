package storage

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8480/media")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "42/1700000000000.png", "image/png", bytes.NewReader([]byte("pngdata")))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8480/media/42/1700000000000.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "42", "1700000000000.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("pngdata"), data)

	require.NoError(t, store.Remove(context.Background(), "42/1700000000000.png"))
	_, err = os.Stat(filepath.Join(dir, "42", "1700000000000.png"))
	assert.True(t, os.IsNotExist(err))

	// Removing again is a no-op.
	assert.NoError(t, store.Remove(context.Background(), "42/1700000000000.png"))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../escape.png", "image/png", bytes.NewReader([]byte("x")))
	assert.Error(t, err)

	_, err = store.Save(context.Background(), "", "image/png", bytes.NewReader([]byte("x")))
	assert.Error(t, err)
}

func TestThumbnailShrinksLargeImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, ThumbMaxDim*2, ThumbMaxDim))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := Thumbnail(buf.Bytes())
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.LessOrEqual(t, decoded.Bounds().Dx(), ThumbMaxDim)
	assert.LessOrEqual(t, decoded.Bounds().Dy(), ThumbMaxDim)
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	_, err := Thumbnail([]byte("definitely not an image"))
	assert.Error(t, err)
}
