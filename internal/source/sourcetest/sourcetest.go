// Package sourcetest provides an in-process package registry for tests of
// code that installs releases through package source.
package sourcetest

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// DefaultManifest is a valid command manifest for published test releases.
const DefaultManifest = `commands:
  - name: build
    description: build a book
    run: ["sh", "-c", "echo build \"$@\"", "build"]
  - name: serve
    description: serve the book as a website for testing
    run: ["sh", "-c", "echo serve \"$@\"", "serve"]
`

// Registry is a fake npm-style registry serving one package.
type Registry struct {
	*httptest.Server

	pkg string

	mu        sync.Mutex
	tarballs  map[string][]byte
	tags      map[string]string
	reported  map[string]string
	truncate  bool
	downloads int
}

// New starts a registry for pkg; it is closed when the test ends.
func New(t testing.TB, pkg string) *Registry {
	t.Helper()
	r := &Registry{
		pkg:      pkg,
		tarballs: make(map[string][]byte),
		tags:     make(map[string]string),
		reported: make(map[string]string),
	}
	r.Server = httptest.NewServer(http.HandlerFunc(r.serve))
	t.Cleanup(r.Server.Close)
	return r
}

// Publish adds version with the given files (paths relative to the package
// root) and moves the "latest" tag to it. A nil files map publishes a
// release containing DefaultManifest as commands.yaml.
func (r *Registry) Publish(t testing.TB, version string, files map[string]string) {
	t.Helper()
	if files == nil {
		files = map[string]string{
			"commands.yaml": DefaultManifest,
			"package.json":  `{"name":"` + r.pkg + `","version":"` + version + `"}`,
		}
	}
	data := Tarball(t, files)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tarballs[version] = data
	r.tags["latest"] = version
}

// Tag points a dist-tag at version.
func (r *Registry) Tag(tag, version string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[tag] = version
}

// ReportVersion makes the metadata entry published as version carry
// reported in its "version" field instead.
func (r *Registry) ReportVersion(version, reported string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reported[version] = reported
}

// TruncateDownloads makes every tarball response end early, simulating a
// transfer interrupted mid-stream.
func (r *Registry) TruncateDownloads(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.truncate = on
}

// Downloads returns how many tarball requests were served.
func (r *Registry) Downloads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.downloads
}

func (r *Registry) serve(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case req.URL.Path == "/"+r.pkg:
		r.serveMetadata(w)
	case strings.HasPrefix(req.URL.Path, "/-/"):
		r.serveTarball(w, strings.TrimPrefix(req.URL.Path, "/-/"))
	default:
		http.NotFound(w, req)
	}
}

func (r *Registry) serveMetadata(w http.ResponseWriter) {
	type dist struct {
		Tarball   string `json:"tarball"`
		Shasum    string `json:"shasum"`
		Integrity string `json:"integrity"`
	}
	type release struct {
		Version string `json:"version"`
		Dist    dist   `json:"dist"`
	}

	versions := make(map[string]release, len(r.tarballs))
	keys := make([]string, 0, len(r.tarballs))
	for v := range r.tarballs {
		keys = append(keys, v)
	}
	sort.Strings(keys)
	for _, v := range keys {
		data := r.tarballs[v]
		sha := sha1.Sum(data)
		sri := sha512.Sum512(data)
		field := v
		if reported, ok := r.reported[v]; ok {
			field = reported
		}
		versions[v] = release{
			Version: field,
			Dist: dist{
				Tarball:   r.Server.URL + "/-/" + r.pkg + "-" + v + ".tgz",
				Shasum:    hex.EncodeToString(sha[:]),
				Integrity: "sha512-" + base64.StdEncoding.EncodeToString(sri[:]),
			},
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"name":      r.pkg,
		"dist-tags": r.tags,
		"versions":  versions,
	})
}

func (r *Registry) serveTarball(w http.ResponseWriter, file string) {
	version := strings.TrimSuffix(strings.TrimPrefix(file, r.pkg+"-"), ".tgz")
	data, ok := r.tarballs[version]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	r.downloads++

	if r.truncate {
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data[:len(data)/2])
		// Dropping the connection leaves the client short of Content-Length.
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				conn.Close()
			}
		}
		return
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// Tarball builds a gzip-compressed npm-style tarball with every file under
// the "package/" prefix.
func Tarball(t testing.TB, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		content := files[name]
		hdr := &tar.Header{
			Name:     "package/" + name,
			Mode:     0644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		if strings.HasPrefix(name, "bin/") {
			hdr.Mode = 0755
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
