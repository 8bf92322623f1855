package updatecheck

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/bookshelf-dev/gitbook-cli/internal/branding"
	"github.com/bookshelf-dev/gitbook-cli/internal/source"
	"go.uber.org/zap"
)

// Resolver looks up a release on the registry.
type Resolver interface {
	Resolve(ctx context.Context, spec string) (*source.Release, error)
}

// Checker compares installed versions with the registry's latest release.
type Checker struct {
	resolver Resolver
	dir      string
	maxAge   time.Duration
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithMaxAge overrides DefaultCacheMaxAge.
func WithMaxAge(d time.Duration) Option {
	return func(c *Checker) {
		c.maxAge = d
	}
}

// WithClock replaces time.Now (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Checker caching its answers in dir.
func New(resolver Resolver, dir string, opts ...Option) *Checker {
	c := &Checker{
		resolver: resolver,
		dir:      dir,
		maxAge:   DefaultCacheMaxAge,
		timeout:  3 * time.Second,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Latest returns the registry's latest version, from the cache when fresh.
func (c *Checker) Latest(ctx context.Context) (string, error) {
	cache, err := LoadCache(c.dir)
	if err != nil {
		c.logger.Debug("ignoring unreadable update cache", zap.Error(err))
		cache = nil
	}
	if !IsStale(cache, c.maxAge, c.now()) {
		return cache.LatestVersion, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	rel, err := c.resolver.Resolve(ctx, source.TagLatest)
	if err != nil {
		return "", err
	}

	if err := SaveCache(c.dir, &Cache{LatestVersion: rel.Version, CheckedAt: c.now()}); err != nil {
		c.logger.Debug("could not save update cache", zap.Error(err))
	}
	return rel.Version, nil
}

// CheckAndPrintBanner prints a notice to w when the registry's latest
// release is newer than installed. Failures are logged and otherwise
// ignored.
func (c *Checker) CheckAndPrintBanner(ctx context.Context, w io.Writer, installed string) {
	latest, err := c.Latest(ctx)
	if err != nil {
		c.logger.Debug("update check failed", zap.Error(err))
		return
	}
	newer, err := IsUpdateAvailable(installed, latest)
	if err != nil {
		c.logger.Debug("update check skipped", zap.Error(err))
		return
	}
	if newer {
		PrintUpdateBanner(w, installed, latest)
	}
}

// PrintUpdateBanner prints the update notification to w.
func PrintUpdateBanner(w io.Writer, installed, latest string) {
	fmt.Fprintf(w, "\n%s %s is available (newest installed: %s)\n", branding.DisplayName(), latest, installed)
	fmt.Fprintf(w, "    Run `%s version:install latest` to install it\n\n", branding.CLIName())
}

// IsUpdateAvailable returns true if latest is newer than current. A leading
// "v" is tolerated on both.
func IsUpdateAvailable(current, latest string) (bool, error) {
	cv, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return false, fmt.Errorf("parsing installed version %q: %w", current, err)
	}
	lv, err := semver.NewVersion(strings.TrimPrefix(latest, "v"))
	if err != nil {
		return false, fmt.Errorf("parsing latest version %q: %w", latest, err)
	}
	return cv.LessThan(lv), nil
}
