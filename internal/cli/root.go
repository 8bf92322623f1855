package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bookshelf-dev/gitbook-cli/internal/branding"
	"github.com/bookshelf-dev/gitbook-cli/internal/commands"
	"github.com/bookshelf-dev/gitbook-cli/internal/config"
	"github.com/bookshelf-dev/gitbook-cli/internal/installer"
	"github.com/bookshelf-dev/gitbook-cli/internal/source"
	"github.com/bookshelf-dev/gitbook-cli/internal/updatecheck"
	"github.com/bookshelf-dev/gitbook-cli/internal/versions"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// buildInfo is injected via ldflags at build time.
type buildInfo struct {
	version string
	commit  string
	date    string
}

// app holds the state shared by every command of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer
	build  buildInfo

	gitbook     string
	debug       bool
	showVersion bool

	logger    *zap.Logger
	store     *config.Store
	cfg       *config.Config
	source    *source.Client
	registry  *versions.Registry
	installer *installer.Installer
	updates   *updatecheck.Checker
}

// Execute runs the CLI with os.Args and build info injected via ldflags.
// Failures are printed to stdout; the returned error only signals that the
// process should exit non-zero.
func Execute(ctx context.Context, version, commit, date string) error {
	a := &app{
		out:    os.Stdout,
		errOut: os.Stderr,
		build:  buildInfo{version: version, commit: commit, date: date},
	}
	return a.run(ctx, os.Args[1:])
}

func (a *app) run(ctx context.Context, args []string) error {
	defer func() {
		if a.logger != nil {
			_ = a.logger.Sync()
		}
	}()

	err := a.dispatch(ctx, args)
	if err != nil {
		a.printError(err)
	}
	return err
}

// dispatch sends built-in commands through cobra and everything else to the
// selected version's command table.
func (a *app) dispatch(ctx context.Context, args []string) error {
	root := newRootCmd(a)
	inv := parseInvocation(args)

	if inv.command == "" || isBuiltin(root, inv.command) {
		root.SetArgs(args)
		root.SetOut(a.out)
		root.SetErr(a.errOut)
		return root.ExecuteContext(ctx)
	}

	a.gitbook = inv.version
	a.debug = inv.debug
	if err := a.setup(); err != nil {
		return err
	}
	return a.delegate(ctx, inv)
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   branding.CLIName() + " [command]",
		Short: branding.Description(),
		Long: branding.DisplayName() + ` CLI installs, links, and removes versions of ` + branding.DisplayName() + `
and runs commands with the version selected by --gitbook.

Any command that is not built in (build, serve, ...) is passed to the
selected version, installing it first if needed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.showVersion {
				return runVersion(cmd, a)
			}
			return cmd.Help()
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.PersistentFlags().StringVarP(&a.gitbook, "gitbook", "v", versions.Latest, "specify "+branding.DisplayName()+" version to use")
	cmd.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "enable verbose error")
	cmd.Flags().BoolVarP(&a.showVersion, "version", "V", false, "print CLI and "+branding.DisplayName()+" versions")

	cmd.AddCommand(newVersionsCmd(a))
	cmd.AddCommand(newInstallCmd(a))
	cmd.AddCommand(newLinkCmd(a))
	cmd.AddCommand(newUninstallCmd(a))
	cmd.AddCommand(newUnlinkCmd(a))
	cmd.AddCommand(newAvailableCmd(a))
	cmd.AddCommand(newDoctorCmd(a))
	cmd.AddCommand(newConfigGetCmd(a))
	cmd.AddCommand(newConfigSetCmd(a))
	cmd.SetHelpCommand(newHelpCmd(a))

	return cmd
}

// isBuiltin reports whether name is handled by the cobra command tree.
func isBuiltin(root *cobra.Command, name string) bool {
	if name == "help" {
		return true
	}
	for _, c := range root.Commands() {
		if c.Name() == name || c.HasAlias(name) {
			return true
		}
	}
	return false
}

// setup loads configuration and wires the version registry, package source,
// and installer.
func (a *app) setup() error {
	if a.registry != nil {
		return nil
	}

	logger := zap.NewNop()
	if a.debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = l
	}
	a.logger = logger

	a.store = config.NewStore(config.Dir())
	if err := a.store.Init(); err != nil {
		return err
	}
	cfg, err := a.store.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	logger.Debug("loaded config",
		zap.String("file", a.store.FilePath()),
		zap.String("install_dir", cfg.InstallDir),
		zap.String("registry", cfg.Registry))

	a.source = source.New(cfg.Registry, cfg.Package,
		source.WithToken(os.Getenv(branding.EnvVar("REGISTRY_TOKEN"))),
		source.WithProgress(a.errOut),
		source.WithLogger(logger))
	a.installer = installer.New(a.store, cfg, a.source, installer.WithLogger(logger))
	a.registry = versions.NewRegistry(cfg,
		versions.WithInstaller(a.installer),
		versions.WithLogger(logger),
		versions.WithCommandOptions(commands.WithOutput(a.out, a.errOut)))
	if os.Getenv(branding.EnvVar("NO_UPDATE_CHECK")) == "" {
		a.updates = updatecheck.New(a.source, a.store.Dir(), updatecheck.WithLogger(logger))
	}
	return nil
}

// printError writes the failure message and, with --debug, the chain of
// wrapped causes.
func (a *app) printError(err error) {
	fmt.Fprintln(a.out, "Error:", err)
	if !a.debug {
		return
	}
	for e := errors.Unwrap(err); e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(a.out, "  caused by (%T): %v\n", e, e)
	}
}
