package cli

import (
	"context"

	"github.com/bookshelf-dev/gitbook-cli/internal/commands"
	"github.com/bookshelf-dev/gitbook-cli/internal/versions"
	"go.uber.org/zap"
)

// delegate resolves the selected version, installing it if needed, and runs
// inv.command from its command table. When running "latest", a newer release
// on the registry is announced on stderr first.
func (a *app) delegate(ctx context.Context, inv invocation) error {
	loaded, err := a.registry.Get(ctx, a.gitbook)
	if err != nil {
		return err
	}

	if a.updates != nil && a.gitbook == versions.Latest && !loaded.Version.Linked {
		a.updates.CheckAndPrintBanner(ctx, a.errOut, loaded.Version.Name)
	}

	a.logger.Debug("dispatching command",
		zap.String("command", inv.command),
		zap.String("version", loaded.Version.Name),
		zap.Strings("args", inv.args),
		zap.Any("kwargs", inv.kwargs))

	_, err = commands.Dispatch(ctx, loaded.Commands, inv.command, inv.args, inv.kwargs)
	return err
}
