// Package fs stores narrator state on the local filesystem.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultCacheDir returns the default cache directory for branch-narrator.
// Uses XDG_CACHE_HOME if set, otherwise falls back to ~/.cache/branch-narrator.
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "branch-narrator")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "branch-narrator")
}

// ReportCache stores rendered diff summaries keyed by a content hash, so a
// diff seen before is answered without reparsing.
type ReportCache struct {
	dir string
}

// NewReportCache creates a cache rooted at dir. The directory is created
// lazily on first store.
func NewReportCache(dir string) *ReportCache {
	return &ReportCache{dir: dir}
}

func (c *ReportCache) path(key uint64) string {
	return filepath.Join(c.dir, fmt.Sprintf("%016x.json", key))
}

// Load returns the cached report for key, if present.
func (c *ReportCache) Load(key uint64) ([]byte, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Store writes the report for key, creating the cache directory as needed.
func (c *ReportCache) Store(key uint64, data []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}
