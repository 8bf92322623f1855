package cli

import (
	"fmt"
	"os"

	"github.com/bookshelf-dev/gitbook-cli/internal/versions"
	"github.com/spf13/cobra"
)

func newLinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version:link [version] [folder]",
		Short: "Link a version to a local folder",
		Long: `Resolve a version name to a local folder instead of an installed copy.
The version defaults to "latest" and the folder to the current directory.
A link takes precedence over an installed version with the same name.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := versions.Latest
			if len(args) > 0 {
				spec = args[0]
			}
			folder := ""
			if len(args) > 1 {
				folder = args[1]
			} else {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("getting current directory: %w", err)
				}
				folder = cwd
			}

			abs, err := a.installer.Link(spec, folder)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Version %s points to %s\n", spec, abs)
			return nil
		},
	}
}

func newUnlinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version:unlink [version]",
		Short: "Remove the link for a version",
		Long:  `Remove a link created with version:link. The linked folder is not touched.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := versions.Latest
			if len(args) > 0 {
				spec = args[0]
			}
			if err := a.installer.Unlink(spec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Version %s has been unlinked\n", spec)
			return nil
		},
	}
}
