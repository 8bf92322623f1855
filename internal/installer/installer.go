package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/bookshelf-dev/gitbook-cli/internal/config"
	"github.com/bookshelf-dev/gitbook-cli/internal/manifest"
	"github.com/bookshelf-dev/gitbook-cli/internal/platform"
	"github.com/bookshelf-dev/gitbook-cli/internal/source"
	"github.com/bookshelf-dev/gitbook-cli/internal/versions"
	"go.uber.org/zap"
)

const stagingPattern = ".tmp-"

// Installer mutates the install directory and the link table.
type Installer struct {
	store  *config.Store
	cfg    *config.Config
	source *source.Client
	logger *zap.Logger
}

// Option configures an Installer.
type Option func(*Installer)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *zap.Logger) Option {
	return func(i *Installer) {
		if l != nil {
			i.logger = l
		}
	}
}

// New creates an Installer. Link changes are written through store; src may
// be nil when only link management is needed.
func New(store *config.Store, cfg *config.Config, src *source.Client, opts ...Option) *Installer {
	i := &Installer{
		store:  store,
		cfg:    cfg,
		source: src,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Install fetches the release matching spec and installs it as
// <installDir>/<version>, replacing any existing copy. "latest" means the
// release the source tags as latest. Returns the concrete version installed.
func (i *Installer) Install(ctx context.Context, spec string) (string, error) {
	if spec == "" {
		spec = versions.Latest
	}
	if i.source == nil {
		return "", &InstallError{Spec: spec, Err: errors.New("no package source configured")}
	}

	rel, err := i.source.Resolve(ctx, spec)
	if err != nil {
		return "", &InstallError{Spec: spec, Err: err}
	}

	dest, err := versionDir(i.cfg.InstallDir, rel.Version)
	if err != nil {
		return "", &InstallError{Spec: spec, Err: err}
	}

	if err := os.MkdirAll(i.cfg.InstallDir, platform.DirPermNormal); err != nil {
		return "", &InstallError{Spec: spec, Err: fmt.Errorf("creating install directory: %w", err)}
	}

	staging, err := os.MkdirTemp(i.cfg.InstallDir, stagingPattern)
	if err != nil {
		return "", &InstallError{Spec: spec, Err: fmt.Errorf("creating staging directory: %w", err)}
	}
	defer os.RemoveAll(staging)

	log := i.logger.With(zap.String("spec", spec), zap.String("version", rel.Version))
	log.Debug("staging install", zap.String("dir", staging))

	archive, err := i.source.Download(ctx, rel, staging)
	if err != nil {
		return "", &InstallError{Spec: spec, Err: err}
	}

	root := filepath.Join(staging, "package")
	if err := i.source.Extract(archive, root); err != nil {
		return "", &InstallError{Spec: spec, Err: err}
	}

	if _, _, err := manifest.Load(root); err != nil {
		return "", &InstallError{Spec: spec, Err: fmt.Errorf("release %s is not installable: %w", rel.Version, err)}
	}

	if err := ctx.Err(); err != nil {
		return "", &InstallError{Spec: spec, Err: err}
	}

	if err := platform.ReplaceDir(root, dest); err != nil {
		return "", &InstallError{Spec: spec, Err: err}
	}

	log.Debug("installed version", zap.String("path", dest))
	return rel.Version, nil
}

// versionDir returns the directory version installs into. The version must
// be a plain semantic version naming a direct child of installDir.
func versionDir(installDir, version string) (string, error) {
	if _, err := semver.StrictNewVersion(version); err != nil {
		return "", fmt.Errorf("release version %q is not a valid semantic version", version)
	}
	dest := filepath.Join(installDir, version)
	rel, err := filepath.Rel(installDir, dest)
	if err != nil || rel != version || filepath.Base(dest) != version {
		return "", fmt.Errorf("release version %q escapes the install directory", version)
	}
	return dest, nil
}

// Link records folder as the resolution target for spec. The folder must
// exist and be a directory; its contents are checked when the version is
// loaded.
func (i *Installer) Link(spec, folder string) (string, error) {
	if spec == "" {
		spec = versions.Latest
	}
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", &InvalidPathError{Path: folder, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", &InvalidPathError{Path: abs, Err: err}
	}
	if !info.IsDir() {
		return "", &InvalidPathError{Path: abs}
	}

	i.cfg.SetLink(spec, abs)
	if err := i.store.Save(i.cfg); err != nil {
		return "", err
	}
	i.logger.Debug("linked version", zap.String("spec", spec), zap.String("folder", abs))
	return abs, nil
}

// Unlink removes the link for spec.
func (i *Installer) Unlink(spec string) error {
	if _, ok := i.cfg.Link(spec); !ok {
		return &versions.NotFoundError{Spec: spec}
	}
	i.cfg.RemoveLink(spec)
	if err := i.store.Save(i.cfg); err != nil {
		return err
	}
	i.logger.Debug("unlinked version", zap.String("spec", spec))
	return nil
}

// Uninstall removes spec. A linked spec only loses its link entry and the
// linked folder is left alone. Otherwise the installed directory that
// Resolve selects is deleted. Returns the version removed.
func (i *Installer) Uninstall(spec string) (versions.Version, error) {
	v, err := versions.NewRegistry(i.cfg, versions.WithLogger(i.logger)).Resolve(spec)
	if err != nil {
		return versions.Version{}, err
	}

	if v.Linked {
		return v, i.Unlink(v.Name)
	}

	if platform.IsSymlink(v.Path) {
		if target, rerr := platform.ReadSymlinkTarget(v.Path); rerr == nil {
			i.logger.Debug("removing symlinked version", zap.String("version", v.Name), zap.String("target", target))
		}
		err = platform.RemoveSymlink(v.Path)
	} else {
		err = os.RemoveAll(v.Path)
	}
	if err != nil {
		return v, fmt.Errorf("removing %s: %w", v.Path, err)
	}
	i.logger.Debug("uninstalled version", zap.String("version", v.Name), zap.String("path", v.Path))
	return v, nil
}
