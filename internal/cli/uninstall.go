package cli

import (
	"fmt"

	"github.com/bookshelf-dev/gitbook-cli/internal/branding"
	"github.com/bookshelf-dev/gitbook-cli/internal/versions"
	"github.com/spf13/cobra"
)

func newUninstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version:uninstall [version]",
		Short: "Uninstall a specific version of " + branding.DisplayName(),
		Long: `Remove an installed version. For a linked version only the link is
removed; the linked folder is left alone.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := versions.Latest
			if len(args) > 0 {
				spec = args[0]
			}

			removed, err := a.installer.Uninstall(spec)
			if err != nil {
				return err
			}
			if removed.Linked {
				fmt.Fprintf(cmd.OutOrStdout(), "Version %s has been unlinked from %s\n", removed.Name, removed.Path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Version %s has been uninstalled\n", removed.Name)
			return nil
		},
	}
}
