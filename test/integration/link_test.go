//go:build integration

package integration_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bookshelf-dev/gitbook-cli/internal/installer"
	"github.com/bookshelf-dev/gitbook-cli/internal/versions"
)

func TestLinkSurvivesReload(t *testing.T) {
	env := setupTestEnv(t)

	if _, err := env.Installer.Link("1.0", env.BookDir); err != nil {
		t.Fatalf("Link: %v", err)
	}
	env.reload(t)

	v, err := env.Registry.Resolve("1.0")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !v.Linked || v.Path != env.BookDir {
		t.Errorf("Resolve(1.0) = %+v, want link to %s", v, env.BookDir)
	}
}

func TestLinkDottedAliasRoundTrips(t *testing.T) {
	env := setupTestEnv(t)

	for _, alias := range []string{"3.2.3", "Dev.Build"} {
		if _, err := env.Installer.Link(alias, env.BookDir); err != nil {
			t.Fatalf("Link(%q): %v", alias, err)
		}
	}
	env.reload(t)

	for _, alias := range []string{"3.2.3", "Dev.Build"} {
		if _, ok := env.Config.Link(alias); !ok {
			t.Errorf("alias %q lost after reload; links = %v", alias, env.Config.Links)
		}
	}
}

func TestLinkedFolderWithoutManifest(t *testing.T) {
	env := setupTestEnv(t)
	if _, err := env.Installer.Link("dev", env.BookDir); err != nil {
		t.Fatalf("Link must not validate contents: %v", err)
	}

	_, err := env.Registry.Get(context.Background(), "dev")
	if err == nil {
		t.Fatal("expected load error for folder without manifest")
	}
	if env.Remote.Downloads() != 0 {
		t.Error("linked version must never trigger an install")
	}
}

func TestLinkMissingFolder(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.Installer.Link("dev", env.BookDir+"/missing")
	var invalid *installer.InvalidPathError
	if !errors.As(err, &invalid) {
		t.Fatalf("Link error = %v, want *installer.InvalidPathError", err)
	}

	_, err = env.Installer.Uninstall("dev")
	var notFound *versions.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Uninstall error = %v, want *versions.NotFoundError", err)
	}
}
