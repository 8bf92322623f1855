package commands

import (
	"context"
	"io"

	"github.com/bookshelf-dev/gitbook-cli/internal/manifest"
	"go.uber.org/zap"
)

// Option configures how a command table is loaded.
type Option func(*loadOptions)

type loadOptions struct {
	version string
	stdout  io.Writer
	stderr  io.Writer
	logger  *zap.Logger
}

// WithVersion sets the version name exported to commands.
func WithVersion(name string) Option {
	return func(o *loadOptions) {
		o.version = name
	}
}

// WithOutput streams command output to stdout and stderr in addition to
// capturing it.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *loadOptions) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *zap.Logger) Option {
	return func(o *loadOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// LoadCommands builds the command table of the version rooted at root.
func LoadCommands(root string, opts ...Option) (*Table, error) {
	o := &loadOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	m, path, err := manifest.Load(root)
	if err != nil {
		return nil, &InvalidInstallationError{Root: root, Err: err}
	}

	version := o.version
	if version == "" {
		version = m.Version
	}

	cmds := make([]Command, 0, len(m.Commands))
	for _, spec := range m.Commands {
		cmds = append(cmds, &processCommand{
			spec:    spec,
			version: version,
			root:    root,
			stdout:  o.stdout,
			stderr:  o.stderr,
			logger:  o.logger,
		})
	}

	o.logger.Debug("loaded command table",
		zap.String("manifest", path),
		zap.Int("commands", len(cmds)))
	return NewTable(version, root, cmds...), nil
}

// Dispatch runs the command called name. A command that exits non-zero
// yields its Result together with an *ExitError. A command returning no
// Result is treated as a successful run with no output.
func Dispatch(ctx context.Context, table *Table, name string, args []string, kwargs map[string]string) (*Result, error) {
	cmd, ok := table.Lookup(name)
	if !ok {
		version := ""
		if table != nil {
			version = table.Version
		}
		return nil, &UnknownCommandError{Name: name, Version: version, Available: table.Names()}
	}

	res, err := cmd.Execute(ctx, args, kwargs)
	if err != nil {
		return res, err
	}
	if res == nil {
		res = &Result{}
	}
	if res.ExitCode != 0 {
		return res, &ExitError{Name: name, Code: res.ExitCode}
	}
	return res, nil
}
