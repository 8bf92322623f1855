package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAvailableCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "version:available",
		Short: "List versions available on the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := a.source.FetchMetadata(cmd.Context())
			if err != nil {
				return err
			}

			installed := make(map[string]bool)
			list, err := a.registry.List()
			if err != nil {
				return err
			}
			for _, v := range list {
				installed[v.Name] = true
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

			tags := make([]string, 0, len(meta.DistTags))
			for tag := range meta.DistTags {
				tags = append(tags, tag)
			}
			sort.Strings(tags)
			if len(tags) > 0 {
				fmt.Fprintln(w, "Tags:")
				fmt.Fprintln(w)
				for _, tag := range tags {
					fmt.Fprintf(w, "    %s\t%s\n", tag, meta.DistTags[tag])
				}
				fmt.Fprintln(w)
			}

			available := meta.Available()
			const shortList = 10
			if !all && len(available) > shortList {
				available = available[:shortList]
			}
			fmt.Fprintln(w, "Versions:")
			fmt.Fprintln(w)
			for _, v := range available {
				mark := ""
				if installed[v] {
					mark = "(installed)"
				}
				fmt.Fprintf(w, "    %s\t%s\n", v, mark)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every published version")
	return cmd
}
