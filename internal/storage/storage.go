package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrUnsupportedContentType = errors.New("only image and video uploads are accepted")

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	DeleteObject(ctx context.Context, objectKey string) error
}

// IsMediaContentType reports whether uploads of contentType are accepted.
func IsMediaContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") || strings.HasPrefix(mediaType, "video/")
}

// ExerciseMediaKey builds the object key for a new demonstration file uploaded by
// professionalID, e.g. "exercises/<pro>/<uuid>.mp4".
func ExerciseMediaKey(professionalID uuid.UUID, contentType string) (string, error) {
	if !IsMediaContentType(contentType) {
		return "", ErrUnsupportedContentType
	}
	ext := ""
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	return fmt.Sprintf("exercises/%s/%s%s", professionalID, uuid.NewString(), ext), nil
}

// OwnsMediaKey reports whether key was issued to professionalID.
func OwnsMediaKey(professionalID uuid.UUID, key string) bool {
	return strings.HasPrefix(key, fmt.Sprintf("exercises/%s/", professionalID))
}
