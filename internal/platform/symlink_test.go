package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestIsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require developer mode on Windows")
	}
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target")
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(tmp, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	if !IsSymlink(link) {
		t.Error("IsSymlink(link) = false, want true")
	}
	if IsSymlink(target) {
		t.Error("IsSymlink(target) = true, want false")
	}
	if IsSymlink(filepath.Join(tmp, "missing")) {
		t.Error("IsSymlink(missing) = true, want false")
	}
}

func TestReadSymlinkTargetRelative(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require developer mode on Windows")
	}
	tmp := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmp, "book"), 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(tmp, "alias")
	if err := os.Symlink("book", link); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSymlinkTarget(link)
	if err != nil {
		t.Fatalf("ReadSymlinkTarget: %v", err)
	}
	if want := filepath.Join(tmp, "book"); got != want {
		t.Errorf("target = %q, want %q", got, want)
	}
}

func TestRemoveSymlinkKeepsTarget(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require developer mode on Windows")
	}
	tmp := t.TempDir()
	target := filepath.Join(tmp, "book")
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "README.md"), []byte("# Book"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(tmp, "alias")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	if err := RemoveSymlink(link); err != nil {
		t.Fatalf("RemoveSymlink: %v", err)
	}
	if _, err := os.Lstat(link); !os.IsNotExist(err) {
		t.Error("link still exists after RemoveSymlink")
	}
	if _, err := os.Stat(filepath.Join(target, "README.md")); err != nil {
		t.Errorf("target content removed: %v", err)
	}
}

func TestRemoveSymlinkRejectsDirectory(t *testing.T) {
	tmp := t.TempDir()
	if err := RemoveSymlink(tmp); err == nil {
		t.Fatal("expected error removing a real directory")
	}
}
