package cli

import (
	"fmt"

	"github.com/bookshelf-dev/gitbook-cli/internal/branding"
	"github.com/spf13/cobra"
)

func newConfigGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config:get <key>",
		Short: "Get a configuration value",
		Long: `Print a value from ` + branding.HomeDir() + `/config.yaml after environment
overrides. Keys: install_dir, registry, package.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := a.cfg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config:set <key> <value>",
		Short: "Set a configuration value",
		Long: `Write a value to ` + branding.HomeDir() + `/config.yaml.
Keys: install_dir, registry, package.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := a.cfg.Set(key, value); err != nil {
				return err
			}
			if err := a.store.Save(a.cfg); err != nil {
				return fmt.Errorf("setting config key %q: %w", key, err)
			}
			stored, _ := a.cfg.Get(key)
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, stored)
			return nil
		},
	}
}
