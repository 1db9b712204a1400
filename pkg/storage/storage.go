// Package storage uploads user avatar images. The contract mirrors what the
// auth flow needs from any image host: hand over bytes under a chosen public
// id, get back the id plus a version for cache-busting URLs.
package storage

import (
	"context"
	"errors"
)

var (
	ErrInvalidConfig = errors.New("storage: invalid config")
	ErrUploadFailed  = errors.New("storage: upload failed")
	ErrEmptyFile     = errors.New("storage: empty file data")
)

// UploadResult describes a stored image.
type UploadResult struct {
	PublicID string
	Version  int64
}

// Uploader stores image data under a caller-chosen public id.
type Uploader interface {
	// Upload stores fileData under publicID. With overwrite an existing
	// object is replaced; with invalidate any cached URL for the previous
	// version must stop resolving to stale bytes (a new version is issued).
	Upload(ctx context.Context, fileData []byte, publicID string, overwrite, invalidate bool) (*UploadResult, error)
	// URL returns the public URL for a stored image version.
	URL(publicID string, version int64) string
}
