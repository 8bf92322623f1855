package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/bookshelf-dev/gitbook-cli/internal/branding"
	"github.com/bookshelf-dev/gitbook-cli/internal/platform"
	"github.com/spf13/cobra"
)

func newVersionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List installed versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			installed, err := a.registry.List()
			if err != nil {
				return err
			}
			links := a.registry.Links()
			out := cmd.OutOrStdout()

			if len(installed) == 0 && len(links) == 0 {
				fmt.Fprintln(out, "There are no versions installed")
				fmt.Fprintf(out, "You can install the latest version using: \"%s version:install latest\"\n", branding.CLIName())
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			if len(installed) > 0 {
				fmt.Fprintln(w, "Versions Installed:")
				fmt.Fprintln(w)
				for _, v := range installed {
					if target, err := platform.ReadSymlinkTarget(v.Path); err == nil && platform.IsSymlink(v.Path) {
						fmt.Fprintf(w, "    %s\t-> %s\n", v.Name, target)
						continue
					}
					fmt.Fprintf(w, "    %s\n", v.Name)
				}
				fmt.Fprintln(w)
			}
			if len(links) > 0 {
				fmt.Fprintln(w, "Versions Linked:")
				fmt.Fprintln(w)
				for _, v := range links {
					fmt.Fprintf(w, "    %s\t-> %s\n", v.Name, v.Path)
				}
				fmt.Fprintln(w)
			}
			return w.Flush()
		},
	}
}
