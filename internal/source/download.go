package source

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bookshelf-dev/gitbook-cli/internal/platform"
	"go.uber.org/zap"
)

// Download fetches the release tarball into destDir and verifies it.
// Returns the path to the downloaded archive file.
func (c *Client) Download(ctx context.Context, rel *Release, destDir string) (string, error) {
	if rel.Dist.Tarball == "" {
		return "", fmt.Errorf("release %s has no tarball", rel.Version)
	}

	name := path.Base(rel.Dist.Tarball)
	if name == "." || name == "/" || name == "" {
		name = c.pkg + "-" + rel.Version + ".tgz"
	}
	destPath := filepath.Join(destDir, name)

	req, err := c.newRequest(ctx, rel.Dist.Tarball)
	if err != nil {
		return "", err
	}

	c.logger.Debug("downloading tarball", zap.String("url", rel.Dist.Tarball), zap.String("dest", destPath))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	defer f.Close()

	total := resp.ContentLength
	var downloaded int64
	lastPercent := -1

	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				return "", fmt.Errorf("writing download: %w", writeErr)
			}
			downloaded += int64(n)
			if c.progress != nil && total > 0 {
				percent := int(downloaded * 100 / total)
				if percent != lastPercent {
					fmt.Fprintf(c.progress, "\rDownloading %s %s... %d%%", c.pkg, rel.Version, percent)
					lastPercent = percent
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("reading download stream: %w", readErr)
		}
	}
	if c.progress != nil && total > 0 {
		fmt.Fprintln(c.progress)
	}
	if total > 0 && downloaded != total {
		return "", fmt.Errorf("download truncated: got %d of %d bytes", downloaded, total)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing download file: %w", err)
	}

	if err := Verify(rel, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// Verify checks the archive against the release's sha1 shasum and, when
// published, its sha512 subresource-integrity string.
func Verify(rel *Release, archivePath string) error {
	if rel.Dist.Shasum == "" && rel.Dist.Integrity == "" {
		return fmt.Errorf("release %s publishes no checksum", rel.Version)
	}

	if rel.Dist.Shasum != "" {
		sum, err := fileDigest(archivePath, sha1.New())
		if err != nil {
			return err
		}
		actual := hex.EncodeToString(sum)
		if !strings.EqualFold(actual, rel.Dist.Shasum) {
			return fmt.Errorf("checksum mismatch: expected %s, got %s", rel.Dist.Shasum, actual)
		}
	}

	if algo, expected, ok := strings.Cut(rel.Dist.Integrity, "-"); ok && algo == "sha512" {
		sum, err := fileDigest(archivePath, sha512.New())
		if err != nil {
			return err
		}
		if actual := base64.StdEncoding.EncodeToString(sum); actual != expected {
			return fmt.Errorf("integrity mismatch: expected sha512-%s, got sha512-%s", expected, actual)
		}
	}
	return nil
}

func fileDigest(p string, h hash.Hash) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("opening archive for checksum: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("computing checksum: %w", err)
	}
	return h.Sum(nil), nil
}

// Extract unpacks a .tgz release into destDir. The single top-level
// directory every npm tarball carries ("package/") is stripped. Entries that
// would escape destDir are rejected; entries matching an exclude glob and
// non-regular files other than directories are skipped.
func (c *Client) Extract(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(destDir, platform.DirPermNormal); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		rel := stripTopDir(hdr.Name)
		if rel == "" {
			continue
		}
		if c.excluded(rel) {
			c.logger.Debug("skipping excluded entry", zap.String("entry", rel))
			continue
		}

		target := filepath.Join(destDir, filepath.FromSlash(rel))
		if !withinDir(destDir, target) {
			return fmt.Errorf("archive entry %q escapes the install directory", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, platform.DirPermNormal); err != nil {
				return fmt.Errorf("creating dir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeEntry(tr, target, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		default:
			// Links and devices are not part of published packages.
		}
	}
	return nil
}

func writeEntry(r io.Reader, target string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), platform.DirPermNormal); err != nil {
		return fmt.Errorf("preparing %s: %w", target, err)
	}
	if perm == 0 {
		perm = platform.FilePermNormal
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("writing file %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", target, err)
	}
	// The process umask may have narrowed the mode on create.
	return platform.Chmod(target, perm)
}

func (c *Client) excluded(rel string) bool {
	for _, pattern := range c.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		// "**/x/**" should also match a top-level "x/..." entry.
		if ok, _ := doublestar.Match(strings.TrimPrefix(pattern, "**/"), rel); ok {
			return true
		}
	}
	return false
}

// stripTopDir drops the first path component of a tar entry name.
func stripTopDir(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	_, rest, ok := strings.Cut(name, "/")
	if !ok {
		return ""
	}
	return rest
}

func withinDir(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
