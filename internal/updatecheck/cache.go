package updatecheck

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bookshelf-dev/gitbook-cli/internal/platform"
)

const (
	cacheFileName = "update-check.json"
	// DefaultCacheMaxAge is how long a registry answer is trusted.
	DefaultCacheMaxAge = 24 * time.Hour
)

// Cache is the last known registry "latest" release.
type Cache struct {
	LatestVersion string    `json:"latest_version"`
	CheckedAt     time.Time `json:"checked_at"`
}

// LoadCache reads the cache from dir. Returns nil, nil on first run.
func LoadCache(dir string) (*Cache, error) {
	path := filepath.Join(dir, cacheFileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading update cache: %w", err)
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing update cache: %w", err)
	}
	return &c, nil
}

// SaveCache writes c to dir.
func SaveCache(dir string, c *Cache) error {
	if err := os.MkdirAll(dir, platform.DirPermNormal); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling update cache: %w", err)
	}

	path := filepath.Join(dir, cacheFileName)
	if err := os.WriteFile(path, data, platform.FilePermNormal); err != nil {
		return fmt.Errorf("writing update cache: %w", err)
	}
	return nil
}

// IsStale returns true if c is nil or older than maxAge.
func IsStale(c *Cache, maxAge time.Duration, now time.Time) bool {
	if c == nil {
		return true
	}
	return now.Sub(c.CheckedAt) > maxAge
}
