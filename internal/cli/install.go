package cli

import (
	"fmt"

	"github.com/bookshelf-dev/gitbook-cli/internal/branding"
	"github.com/bookshelf-dev/gitbook-cli/internal/versions"
	"github.com/spf13/cobra"
)

func newInstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version:install [version]",
		Short: "Force install a specific version of " + branding.DisplayName(),
		Long: `Download and install a version from the package registry, replacing any
installed copy. The version may be "latest" (the default), another
dist-tag, an exact version, or a semver range such as "^3.0.0".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := versions.Latest
			if len(args) > 0 {
				spec = args[0]
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Installing %s %s from %s\n", a.cfg.Package, spec, a.cfg.Registry)
			installed, err := a.installer.Install(cmd.Context(), spec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Version %s has been installed\n", installed)
			return nil
		},
	}
}
