// Package cache provides byte-level caching behind a single interface with
// multiple backends: local files, in-memory maps, Redis, MongoDB, and a
// no-op implementation for when caching is disabled.
//
// All backends store raw bytes with an optional time-to-live. Callers are
// responsible for serialization; see [github.com/distkit/distkit/pkg/registry]
// for a JSON-over-cache client built on top of this package.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// appDir is the per-application subdirectory under the user cache root.
const appDir = "distkit"

// Cache is the interface implemented by all cache backends.
//
// Get returns (data, true, nil) on a hit, (nil, false, nil) on a miss,
// and a non-nil error only for backend failures. Expired entries are
// treated as misses.
type Cache interface {
	// Get retrieves the value stored under key.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 or less means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the value stored under key. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Base returns the root cache directory for the application, following the
// XDG convention: $XDG_CACHE_HOME/distkit if XDG_CACHE_HOME is set,
// otherwise ~/.cache/distkit.
func Base() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appDir), nil
}

// PathDir maps a filesystem path to a flat directory name suitable for use
// under the cache base. Path separators become "--" and drive colons become
// "---", with ".cache" appended, so distinct source paths map to distinct
// sibling directories:
//
//	PathDir("/home/user/some-file.zip")  // "--home--user--some-file.zip.cache"
func PathDir(path string) string {
	s := strings.ReplaceAll(filepath.ToSlash(path), ":", "---")
	return strings.ReplaceAll(s, "/", "--") + ".cache"
}

// ScopedCache wraps a Cache and transparently prefixes every key, giving
// callers isolated namespaces over a shared backend.
//
// Example usage:
//
//	// Per-registry namespaces over one file cache
//	pypi := cache.Scoped(fc, "pypi:")
//	npm := cache.Scoped(fc, "npm:")
type ScopedCache struct {
	inner  Cache
	prefix string
}

// Scoped wraps inner so that all keys are prefixed with prefix.
// Scopes can be nested; prefixes accumulate outermost-first.
func Scoped(inner Cache, prefix string) Cache {
	return &ScopedCache{inner: inner, prefix: prefix}
}

// Get retrieves the value stored under the prefixed key.
func (c *ScopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores data under the prefixed key.
func (c *ScopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes the value stored under the prefixed key.
func (c *ScopedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the underlying cache.
func (c *ScopedCache) Close() error {
	return c.inner.Close()
}

// Ensure ScopedCache implements Cache.
var _ Cache = (*ScopedCache)(nil)
