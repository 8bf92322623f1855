package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/bookshelf-dev/gitbook-cli/internal/branding"
	"github.com/spf13/cobra"
)

func newHelpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "help",
		Short: "List commands for a specific version of " + branding.DisplayName(),
		Long: `List the commands exposed by the version selected with --gitbook.
The version is installed first if it is missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := a.registry.Get(cmd.Context(), a.gitbook)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, c := range loaded.Commands.Commands() {
				fmt.Fprintf(w, "    %s\t%s\n", c.Name(), c.Description())
			}
			return w.Flush()
		},
	}
}
