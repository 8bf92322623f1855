//go:build integration

package integration_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bookshelf-dev/gitbook-cli/internal/installer"
)

func TestInstallLatestTwice(t *testing.T) {
	env := setupTestEnv(t)
	env.Remote.Publish(t, "3.2.3", nil)
	ctx := context.Background()

	first, err := env.Installer.Install(ctx, "latest")
	if err != nil {
		t.Fatal(err)
	}
	marker := filepath.Join(env.Config.InstallDir, first, "commands.yaml")
	assertFileExists(t, marker)

	second, err := env.Installer.Install(ctx, "latest")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Install(latest) = %s then %s", first, second)
	}
	assertFileExists(t, marker)
	assertNames(t, env.installedNames(t), []string{"3.2.3"})
}

func TestInstallInterruptedKeepsPreviousState(t *testing.T) {
	env := setupTestEnv(t)
	env.Remote.Publish(t, "3.2.2", nil)
	ctx := context.Background()
	if _, err := env.Installer.Install(ctx, "3.2.2"); err != nil {
		t.Fatal(err)
	}

	// A reinstall of the same version that fails must keep the old copy.
	env.Remote.TruncateDownloads(true)
	_, err := env.Installer.Install(ctx, "3.2.2")
	var installErr *installer.InstallError
	if !errors.As(err, &installErr) {
		t.Fatalf("Install error = %v, want *installer.InstallError", err)
	}
	assertNames(t, env.installedNames(t), []string{"3.2.2"})
	assertFileExists(t, filepath.Join(env.Config.InstallDir, "3.2.2", "commands.yaml"))

	entries, err := os.ReadDir(env.Config.InstallDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("install dir has leftovers: %v", entries)
	}
}

func TestInstallTOMLManifestRelease(t *testing.T) {
	env := setupTestEnv(t)
	env.Remote.Publish(t, "4.0.0", map[string]string{
		"commands.toml": `[[commands]]
name = "build"
description = "build a book"
run = ["sh", "-c", "echo toml"]
`,
	})

	loaded, err := env.Registry.Get(context.Background(), "4.0.0")
	if err != nil {
		t.Fatalf("Get(4.0.0): %v", err)
	}
	if _, ok := loaded.Commands.Lookup("build"); !ok {
		t.Error("TOML manifest command not loaded")
	}
}
