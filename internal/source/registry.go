package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/bookshelf-dev/gitbook-cli/internal/branding"
	"go.uber.org/zap"
)

const acceptMetadata = "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8"

// FetchMetadata retrieves the package document from the registry.
func (c *Client) FetchMetadata(ctx context.Context) (*Metadata, error) {
	endpoint := c.registry + "/" + escapePackage(c.pkg)
	c.logger.Debug("fetching package metadata", zap.String("url", endpoint))

	req, err := c.newRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptMetadata)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s metadata: %w", c.pkg, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("package %q not found on %s", c.pkg, c.registry)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("registry denied access (status %d). Set %s if the registry requires authentication", resp.StatusCode, branding.EnvVar("REGISTRY_TOKEN"))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("parsing package metadata: %w", err)
	}
	for key, rel := range meta.Versions {
		if rel.Version == "" {
			rel.Version = key
			meta.Versions[key] = rel
		}
		// Installs are named after the version, so anything but a plain
		// version matching its key is unusable.
		if _, err := semver.StrictNewVersion(key); err != nil || rel.Version != key {
			c.logger.Debug("skipping malformed release",
				zap.String("key", key),
				zap.String("version", rel.Version))
			delete(meta.Versions, key)
		}
	}
	return &meta, nil
}

// Resolve fetches metadata and selects the release matching spec.
func (c *Client) Resolve(ctx context.Context, spec string) (*Release, error) {
	meta, err := c.FetchMetadata(ctx)
	if err != nil {
		return nil, err
	}
	rel, err := meta.Select(spec)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("resolved remote release",
		zap.String("spec", spec),
		zap.String("version", rel.Version),
		zap.String("tarball", rel.Dist.Tarball))
	return rel, nil
}

func (c *Client) newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", branding.CLIName()+"-version-manager")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// escapePackage encodes scoped names ("@scope/name") the way npm registries
// expect them in a path segment.
func escapePackage(pkg string) string {
	if strings.HasPrefix(pkg, "@") {
		return "@" + url.PathEscape(pkg[1:])
	}
	return url.PathEscape(pkg)
}
