package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	ErrEmptyUpload  = errors.New("empty upload")
	ErrInvalidPath  = errors.New("invalid media path")
	ErrFileNotFound = errors.New("file not found")
)

// Uploader stores blobs under a slash separated path and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, path string) (string, error)
}

// ProfilePhotoPath is where a user's profile photo taken at unix millis ts is stored.
func ProfilePhotoPath(userID string, ts int64) string {
	return fmt.Sprintf("users/%s/profile-%d.jpg", userID, ts)
}

// BodyImagePath is where a current-body image uploaded for a projection is stored.
func BodyImagePath(userID string, ts int64) string {
	return fmt.Sprintf("users/%s/current-body-%d.jpg", userID, ts)
}

// cleanPath rejects absolute paths and any attempt to leave the media root.
func cleanPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return cleaned, nil
}
