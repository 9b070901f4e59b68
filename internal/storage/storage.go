// Package storage persists rendered audio artifacts. LocalStore keeps
// them on disk for direct serving; R2Store mirrors finished covers to
// Cloudflare R2 so results survive instance restarts.
package storage

import (
	"context"
	"io"
	"time"
)

// ArtifactStore defines the interface for object storage operations
type ArtifactStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	GetPublicURL(key string) string
}
