package cli

import (
	"errors"
	"fmt"

	"github.com/bookshelf-dev/gitbook-cli/internal/branding"
	"github.com/bookshelf-dev/gitbook-cli/internal/versions"
	"github.com/spf13/cobra"
)

// runVersion prints the CLI build and the version --gitbook resolves to
// without installing anything.
func runVersion(cmd *cobra.Command, a *app) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "CLI version: %s (commit: %s, built: %s)\n", a.build.version, a.build.commit, a.build.date)

	v, err := a.registry.Resolve(a.gitbook)
	var notFound *versions.NotFoundError
	switch {
	case errors.As(err, &notFound):
		fmt.Fprintf(out, "%s version: %s is not installed\n", branding.DisplayName(), a.gitbook)
		return nil
	case err != nil:
		return err
	case v.Linked:
		fmt.Fprintf(out, "%s version: %s (linked to %s)\n", branding.DisplayName(), v.Name, v.Path)
	default:
		fmt.Fprintf(out, "%s version: %s\n", branding.DisplayName(), v.Name)
	}
	return nil
}
