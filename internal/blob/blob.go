// Package blob stores opaque evidence payloads outside the SQLite store.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("blob: object not found")

// Store is a flat key/value object store.
type Store interface {
	// Put writes data under key and returns the key it was stored at.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the object under key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error
	// Location describes where objects land, for display.
	Location() string
}

// EvidenceKey builds the object key for one evidence frame.
func EvidenceKey(sessionID string, step int, capturedAt time.Time, contentType string) string {
	return path.Join(
		"evidence",
		sessionID,
		fmt.Sprintf("step-%03d", step),
		fmt.Sprintf("%d-%s%s", capturedAt.UnixMilli(), uuid.NewString()[:8], extFor(contentType)),
	)
}

func extFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("blob: empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, `\`) {
		return fmt.Errorf("blob: invalid key %q", key)
	}
	return nil
}
