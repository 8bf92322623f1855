package versions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bookshelf-dev/gitbook-cli/internal/commands"
	"github.com/bookshelf-dev/gitbook-cli/internal/config"
)

const manifest = `commands:
  - name: build
    run: ["sh", "-c", "echo build"]
`

func newConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		InstallDir: filepath.Join(t.TempDir(), "versions"),
		Links:      config.LinkTable{},
	}
}

func install(t *testing.T, cfg *config.Config, names ...string) {
	t.Helper()
	for _, name := range names {
		dir := filepath.Join(cfg.InstallDir, name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "commands.yaml"), []byte(manifest), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func names(list []Version) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, v.Name)
	}
	return out
}

type fakeInstaller struct {
	cfg     *config.Config
	version string
	err     error
	calls   []string
	t       *testing.T
}

func (f *fakeInstaller) Install(_ context.Context, spec string) (string, error) {
	f.calls = append(f.calls, spec)
	if f.err != nil {
		return "", f.err
	}
	install(f.t, f.cfg, f.version)
	return f.version, nil
}

func TestList_Empty(t *testing.T) {
	cfg := newConfig(t)
	r := NewRegistry(cfg)

	list, err := r.List()
	if err != nil {
		t.Fatalf("List on missing dir: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("List() = %v, want empty slice", list)
	}
}

func TestList_Order(t *testing.T) {
	cfg := newConfig(t)
	install(t, cfg, "2.6.9", "3.2.3", "10.0.0", "3.0.0-beta.1", "canary", "3.2.10", "alpha")
	r := NewRegistry(cfg)

	list, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"10.0.0", "3.2.10", "3.2.3", "3.0.0-beta.1", "2.6.9", "alpha", "canary"}
	if got := names(list); !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	again, _ := r.List()
	if !reflect.DeepEqual(list, again) {
		t.Error("List() is not deterministic")
	}
}

func TestList_SkipsHiddenAndFiles(t *testing.T) {
	cfg := newConfig(t)
	install(t, cfg, "3.2.3", ".tmp-123", ".3.2.3.backup")
	if err := os.WriteFile(filepath.Join(cfg.InstallDir, "README"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	list, err := NewRegistry(cfg).List()
	if err != nil {
		t.Fatal(err)
	}
	if got := names(list); !reflect.DeepEqual(got, []string{"3.2.3"}) {
		t.Errorf("List() = %v, want [3.2.3]", got)
	}
}

func TestList_FollowsSymlinkedVersions(t *testing.T) {
	cfg := newConfig(t)
	install(t, cfg, "3.2.3")
	target := t.TempDir()
	if err := os.Symlink(target, filepath.Join(cfg.InstallDir, "local")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	list, err := NewRegistry(cfg).List()
	if err != nil {
		t.Fatal(err)
	}
	if got := names(list); !reflect.DeepEqual(got, []string{"3.2.3", "local"}) {
		t.Errorf("List() = %v, want [3.2.3 local]", got)
	}
}

func TestResolve(t *testing.T) {
	cfg := newConfig(t)
	install(t, cfg, "2.6.9", "3.1.0", "3.2.3", "4.0.0-alpha.1", "canary")
	r := NewRegistry(cfg)

	tests := []struct {
		spec string
		want string
	}{
		{"latest", "3.2.3"},
		{"", "3.2.3"},
		{"2.6.9", "2.6.9"},
		{"v2.6.9", "2.6.9"},
		{"canary", "canary"},
		{"~3.1.0", "3.1.0"},
		{"^3.0.0", "3.2.3"},
		{"<3.0.0", "2.6.9"},
		{"4.0.0-alpha.1", "4.0.0-alpha.1"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			v, err := r.Resolve(tt.spec)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.spec, err)
			}
			if v.Name != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.spec, v.Name, tt.want)
			}
			if v.Linked {
				t.Errorf("Resolve(%q) reported a link", tt.spec)
			}
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	cfg := newConfig(t)
	install(t, cfg, "3.2.3")
	r := NewRegistry(cfg)

	for _, spec := range []string{"1.0.0", "^5.0.0", "nightly"} {
		_, err := r.Resolve(spec)
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			t.Errorf("Resolve(%q) error = %v, want *NotFoundError", spec, err)
			continue
		}
		if notFound.Spec != spec {
			t.Errorf("NotFoundError.Spec = %q, want %q", notFound.Spec, spec)
		}
	}
}

func TestResolve_LatestOnlyPrerelease(t *testing.T) {
	cfg := newConfig(t)
	install(t, cfg, "4.0.0-alpha.1", "4.0.0-alpha.2", "nightly")

	v, err := NewRegistry(cfg).Resolve("latest")
	if err != nil {
		t.Fatal(err)
	}
	if v.Name != "4.0.0-alpha.2" {
		t.Errorf("Resolve(latest) = %s, want 4.0.0-alpha.2", v.Name)
	}
}

func TestResolve_LatestNothingInstalled(t *testing.T) {
	cfg := newConfig(t)
	install(t, cfg, "nightly")

	_, err := NewRegistry(cfg).Resolve("latest")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Resolve(latest) error = %v, want *NotFoundError", err)
	}
}

func TestResolve_LinkWins(t *testing.T) {
	cfg := newConfig(t)
	install(t, cfg, "1.0")
	folder := t.TempDir()
	cfg.SetLink("1.0", folder)

	v, err := NewRegistry(cfg).Resolve("1.0")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Linked || v.Path != folder {
		t.Errorf("Resolve(1.0) = %+v, want link to %s", v, folder)
	}
}

func TestLinks(t *testing.T) {
	cfg := newConfig(t)
	cfg.SetLink("dev", "/src/dev")
	cfg.SetLink("canary", "/src/canary")

	links := NewRegistry(cfg).Links()
	want := []Version{
		{Name: "canary", Path: "/src/canary", Linked: true},
		{Name: "dev", Path: "/src/dev", Linked: true},
	}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("Links() = %+v, want %+v", links, want)
	}
}

func TestGet_Installed(t *testing.T) {
	cfg := newConfig(t)
	install(t, cfg, "3.2.3")
	inst := &fakeInstaller{cfg: cfg, version: "9.9.9", t: t}

	loaded, err := NewRegistry(cfg, WithInstaller(inst)).Get(context.Background(), "latest")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.Version.Name != "3.2.3" {
		t.Errorf("Version = %s, want 3.2.3", loaded.Version.Name)
	}
	if len(inst.calls) != 0 {
		t.Errorf("installer called %v for an installed version", inst.calls)
	}
	if _, ok := loaded.Commands.Lookup("build"); !ok {
		t.Error("command table is missing build")
	}
}

func TestGet_InstallsMissingLatest(t *testing.T) {
	cfg := newConfig(t)
	inst := &fakeInstaller{cfg: cfg, version: "3.2.3", t: t}
	r := NewRegistry(cfg, WithInstaller(inst))

	if list, _ := r.List(); len(list) != 0 {
		t.Fatalf("expected empty install dir, got %v", list)
	}

	loaded, err := r.Get(context.Background(), "latest")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(inst.calls, []string{"latest"}) {
		t.Errorf("installer calls = %v, want [latest]", inst.calls)
	}
	if loaded.Version.Name != "3.2.3" {
		t.Errorf("Version = %s, want 3.2.3", loaded.Version.Name)
	}
	if len(loaded.Commands.Names()) == 0 {
		t.Error("expected a non-empty command table")
	}
	if loaded.Commands.Version != "3.2.3" {
		t.Errorf("table version = %q, want 3.2.3", loaded.Commands.Version)
	}
}

func TestGet_InstallFailureNotRetried(t *testing.T) {
	cfg := newConfig(t)
	boom := errors.New("network down")
	inst := &fakeInstaller{cfg: cfg, err: boom, t: t}

	_, err := NewRegistry(cfg, WithInstaller(inst)).Get(context.Background(), "3.2.3")
	if !errors.Is(err, boom) {
		t.Fatalf("Get error = %v, want %v", err, boom)
	}
	if len(inst.calls) != 1 {
		t.Errorf("installer called %d times, want 1", len(inst.calls))
	}
}

func TestGet_NoInstaller(t *testing.T) {
	cfg := newConfig(t)

	_, err := NewRegistry(cfg).Get(context.Background(), "latest")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Get error = %v, want *NotFoundError", err)
	}
}

func TestGet_LinkedFolderValidatedOnLoad(t *testing.T) {
	cfg := newConfig(t)
	folder := t.TempDir()
	cfg.SetLink("dev", folder)
	inst := &fakeInstaller{cfg: cfg, version: "3.2.3", t: t}

	_, err := NewRegistry(cfg, WithInstaller(inst)).Get(context.Background(), "dev")
	var invalid *commands.InvalidInstallationError
	if !errors.As(err, &invalid) {
		t.Fatalf("Get error = %v, want *commands.InvalidInstallationError", err)
	}
	if len(inst.calls) != 0 {
		t.Error("installer must not be called for a linked version")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateUnresolved, "unresolved"},
		{StateResolving, "resolving"},
		{StateInstalling, "installing"},
		{StateResolved, "resolved"},
		{StateFailed, "failed"},
		{State(42), "state(42)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.s), got, tt.want)
		}
	}
}
