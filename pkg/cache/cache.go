// Package cache provides pluggable response caching for registry lookups.
//
// Backends share a small byte-oriented interface so the registry clients can
// run against a local file cache (the CLI default), Redis or MongoDB (for
// shared CI runners), or no cache at all.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache stores raw response payloads keyed by registry and package name.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given time-to-live. A ttl of 0 means the
	// entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// DefaultDir returns the default cache directory (~/.cache/confcheck).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "confcheck"), nil
}
