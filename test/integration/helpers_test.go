//go:build integration

package integration_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookshelf-dev/gitbook-cli/internal/config"
	"github.com/bookshelf-dev/gitbook-cli/internal/installer"
	"github.com/bookshelf-dev/gitbook-cli/internal/source"
	"github.com/bookshelf-dev/gitbook-cli/internal/source/sourcetest"
	"github.com/bookshelf-dev/gitbook-cli/internal/versions"
)

// testEnv is a sandboxed home directory wired to an in-process registry.
type testEnv struct {
	HomeDir   string // GITBOOK_DIR
	BookDir   string // a local checkout used as a link target
	Remote    *sourcetest.Registry
	Store     *config.Store
	Config    *config.Config
	Installer *installer.Installer
	Registry  *versions.Registry
}

// setupTestEnv creates isolated temp directories and points every GITBOOK_*
// setting at them. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir: t.TempDir(),
		BookDir: t.TempDir(),
		Remote:  sourcetest.New(t, "gitbook"),
	}
	t.Setenv("GITBOOK_DIR", env.HomeDir)
	t.Setenv("GITBOOK_REGISTRY", env.Remote.URL)
	t.Setenv("GITBOOK_PACKAGE", "gitbook")
	t.Setenv("GITBOOK_INSTALL_DIR", "")

	env.reload(t)
	return env
}

// reload rebuilds every component from the persisted config, the way a new
// process would.
func (e *testEnv) reload(t *testing.T) {
	t.Helper()

	e.Store = config.NewStore(config.Dir())
	if err := e.Store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg, err := e.Store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e.Config = cfg

	src := source.New(cfg.Registry, cfg.Package)
	e.Installer = installer.New(e.Store, cfg, src)
	e.Registry = versions.NewRegistry(cfg, versions.WithInstaller(e.Installer))
}

// installedNames returns List() as names.
func (e *testEnv) installedNames(t *testing.T) []string {
	t.Helper()
	list, err := e.Registry.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	names := make([]string, 0, len(list))
	for _, v := range list {
		names = append(names, v.Name)
	}
	return names
}

// writeManifest creates commands.yaml in dir.
func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "commands.yaml"), content)
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// requireShell skips tests that execute manifest commands through sh.
func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available, skipping")
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}

// assertNames fails unless got equals want element by element.
func assertNames(t *testing.T, got, want []string) {
	t.Helper()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("versions = %v, want %v", got, want)
	}
}
