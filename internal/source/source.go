package source

import (
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Metadata is the subset of registry package metadata the installer needs.
type Metadata struct {
	Name     string             `json:"name"`
	DistTags map[string]string  `json:"dist-tags"`
	Versions map[string]Release `json:"versions"`
}

// Release is one published version of the package.
type Release struct {
	Version string `json:"version"`
	Dist    Dist   `json:"dist"`
}

// Dist locates and fingerprints a release tarball.
type Dist struct {
	Tarball   string `json:"tarball"`
	Shasum    string `json:"shasum"`
	Integrity string `json:"integrity,omitempty"`
}

// DefaultExcludes are archive entries never written to disk on extract.
var DefaultExcludes = []string{
	"**/.git/**",
	"**/.DS_Store",
	"**/node_modules/.cache/**",
}

// Client fetches releases from a package registry.
type Client struct {
	registry   string
	pkg        string
	httpClient *http.Client
	token      string
	progress   io.Writer
	excludes   []string
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(cl *Client) {
		cl.token = token
	}
}

// WithProgress reports download progress to w.
func WithProgress(w io.Writer) Option {
	return func(cl *Client) {
		cl.progress = w
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// New creates a Client for pkg on the registry at registryURL.
func New(registryURL, pkg string, opts ...Option) *Client {
	c := &Client{
		registry:   strings.TrimRight(registryURL, "/"),
		pkg:        pkg,
		httpClient: http.DefaultClient,
		excludes:   DefaultExcludes,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Package returns the package name this client resolves.
func (c *Client) Package() string {
	return c.pkg
}
