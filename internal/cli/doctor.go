package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/bookshelf-dev/gitbook-cli/internal/manifest"
	"github.com/bookshelf-dev/gitbook-cli/internal/platform"
	"github.com/bookshelf-dev/gitbook-cli/internal/versions"
	"github.com/spf13/cobra"
)

func newDoctorCmd(a *app) *cobra.Command {
	var checkManifest string

	cmd := &cobra.Command{
		Use:   "version:doctor",
		Short: "Check installed and linked versions",
		Long: `Verify that every installed and linked version has a valid command
manifest and that link targets still exist. With --check-manifest, validate
a single manifest file instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if checkManifest != "" {
				return runManifestCheck(out, checkManifest)
			}

			installed, err := a.registry.List()
			if err != nil {
				return err
			}
			targets := append(installed, a.registry.Links()...)
			if len(targets) == 0 {
				fmt.Fprintln(out, "No versions installed or linked.")
				return nil
			}

			problems := 0
			for _, v := range targets {
				if err := checkVersion(v); err != nil {
					fmt.Fprintf(out, "  ✗ %s: %v\n", v, err)
					problems++
					continue
				}
				fmt.Fprintf(out, "  ✓ %s\n", v)
			}
			if problems > 0 {
				return fmt.Errorf("%d of %d versions have problems", problems, len(targets))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&checkManifest, "check-manifest", "", "Validate a manifest file at the given path")
	return cmd
}

// checkVersion reports why v cannot be loaded, if it cannot.
func checkVersion(v versions.Version) error {
	if platform.IsSymlink(v.Path) {
		target, err := platform.ReadSymlinkTarget(v.Path)
		if err != nil {
			return err
		}
		if _, err := os.Stat(target); err != nil {
			return fmt.Errorf("symlink target %s is missing", target)
		}
	}
	info, err := os.Stat(v.Path)
	if err != nil {
		return fmt.Errorf("folder %s is missing", v.Path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", v.Path)
	}
	_, _, err = manifest.Load(v.Path)
	return err
}

func runManifestCheck(out io.Writer, path string) error {
	result, err := manifest.ValidateFile(path)
	if err != nil {
		return err
	}
	if result.Valid {
		fmt.Fprintf(out, "  ✓ %s is valid\n", path)
		return nil
	}
	fmt.Fprintf(out, "  ✗ %s\n", path)
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "      %s: %s\n", issue.Path, issue.Message)
	}
	return fmt.Errorf("manifest %s is invalid", path)
}
