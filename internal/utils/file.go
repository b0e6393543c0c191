package utils

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// DetectImageContentType sniffs the first bytes of r and reports whether
// it is an allowed image type. The returned reader replays the sniffed
// bytes.
func DetectImageContentType(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if _, ok := imageExtensions[contentType]; !ok {
		return contentType, nil, fmt.Errorf("unsupported content type %q", contentType)
	}

	return contentType, io.MultiReader(strings.NewReader(string(head)), r), nil
}

// AvatarKey builds a unique storage key for a user's avatar.
func AvatarKey(userID, contentType string) string {
	ext, ok := imageExtensions[contentType]
	if !ok {
		ext = ".bin"
	}
	return filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
}
