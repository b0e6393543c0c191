package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadExistsDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := store.Upload(ctx, &UploadRequest{
		Key:         "avatars/u1/a.png",
		Reader:      strings.NewReader("png-bytes"),
		ContentType: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/avatars/u1/a.png", resp.URL)
	assert.Equal(t, int64(9), resp.Size)

	exists, err := store.FileExists(ctx, "avatars/u1/a.png")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "avatars/u1/a.png"))
	exists, err = store.FileExists(ctx, "avatars/u1/a.png")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting twice is not an error.
	assert.NoError(t, store.Delete(ctx, "avatars/u1/a.png"))
}

func TestValidateKey(t *testing.T) {
	for _, key := range []string{"", "/etc/passwd", "../secret", "avatars/../../x", "a//b"} {
		assert.ErrorIs(t, validateKey(key), ErrInvalidKey, key)
	}
	assert.NoError(t, validateKey("avatars/u1/photo.jpg"))
}
