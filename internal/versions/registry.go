package versions

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/bookshelf-dev/gitbook-cli/internal/commands"
	"github.com/bookshelf-dev/gitbook-cli/internal/config"
	"go.uber.org/zap"
)

// Installer fetches a version into the install directory and returns the
// concrete identifier it installed.
type Installer interface {
	Install(ctx context.Context, spec string) (string, error)
}

// Loaded is a resolved version together with its command table.
type Loaded struct {
	Version  Version
	Commands *commands.Table
}

// Registry resolves specifiers against a Config's links and install dir.
type Registry struct {
	cfg       *config.Config
	installer Installer
	logger    *zap.Logger
	cmdOpts   []commands.Option
}

// Option configures a Registry.
type Option func(*Registry)

// WithInstaller sets the Installer used by Get for missing versions.
func WithInstaller(i Installer) Option {
	return func(r *Registry) {
		r.installer = i
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithCommandOptions passes opts to commands.LoadCommands on Get.
func WithCommandOptions(opts ...commands.Option) Option {
	return func(r *Registry) {
		r.cmdOpts = append(r.cmdOpts, opts...)
	}
}

// NewRegistry creates a Registry over cfg.
func NewRegistry(cfg *config.Config, opts ...Option) *Registry {
	r := &Registry{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List scans the install directory. Semantic versions come first, newest
// first, followed by other names in lexical order. A missing install
// directory yields an empty list.
func (r *Registry) List() ([]Version, error) {
	entries, err := os.ReadDir(r.cfg.InstallDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Version{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading install directory: %w", err)
	}

	list := make([]Version, 0, len(entries))
	for _, e := range entries {
		if hidden(e.Name()) {
			continue
		}
		p := filepath.Join(r.cfg.InstallDir, e.Name())
		// Stat follows symlinks so a linked-in directory still counts.
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			continue
		}
		list = append(list, Version{Name: e.Name(), Path: p})
	}

	sortVersions(list)
	return list, nil
}

// Links returns the linked versions in name order.
func (r *Registry) Links() []Version {
	names := r.cfg.LinkNames()
	out := make([]Version, 0, len(names))
	for _, name := range names {
		out = append(out, Version{Name: name, Path: r.cfg.Links[name], Linked: true})
	}
	return out
}

// Resolve returns the version selected by spec. An empty spec means Latest.
func (r *Registry) Resolve(spec string) (Version, error) {
	if spec == "" {
		spec = Latest
	}

	if folder, ok := r.cfg.Link(spec); ok {
		return Version{Name: spec, Path: folder, Linked: true}, nil
	}

	installed, err := r.List()
	if err != nil {
		return Version{}, err
	}

	if spec == Latest {
		if v, ok := latest(installed); ok {
			return v, nil
		}
		return Version{}, &NotFoundError{Spec: spec}
	}

	for _, v := range installed {
		if v.Name == spec || v.Name == strings.TrimPrefix(spec, "v") {
			return v, nil
		}
	}

	if c, err := semver.NewConstraint(spec); err == nil {
		for _, v := range installed {
			sv, err := semver.NewVersion(v.Name)
			if err != nil {
				continue
			}
			// installed is sorted newest first.
			if c.Check(sv) {
				return v, nil
			}
		}
	}
	return Version{}, &NotFoundError{Spec: spec}
}

// Get resolves spec, installing it once through the Installer when nothing
// installed matches, and loads the version's command table.
func (r *Registry) Get(ctx context.Context, spec string) (*Loaded, error) {
	if spec == "" {
		spec = Latest
	}
	log := r.logger.With(zap.String("spec", spec))
	log.Debug("version state", zap.Stringer("state", StateResolving))

	v, err := r.Resolve(spec)
	var notFound *NotFoundError
	if errors.As(err, &notFound) && r.installer != nil {
		log.Debug("version state", zap.Stringer("state", StateInstalling))
		installed, installErr := r.installer.Install(ctx, spec)
		if installErr != nil {
			log.Debug("version state", zap.Stringer("state", StateFailed), zap.Error(installErr))
			return nil, installErr
		}
		v, err = r.Resolve(installed)
	}
	if err != nil {
		log.Debug("version state", zap.Stringer("state", StateFailed), zap.Error(err))
		return nil, err
	}

	opts := append([]commands.Option{commands.WithVersion(v.Name), commands.WithLogger(r.logger)}, r.cmdOpts...)
	table, err := commands.LoadCommands(v.Path, opts...)
	if err != nil {
		log.Debug("version state", zap.Stringer("state", StateFailed), zap.Error(err))
		return nil, err
	}

	log.Debug("version state",
		zap.Stringer("state", StateResolved),
		zap.String("version", v.Name),
		zap.String("path", v.Path),
		zap.Bool("linked", v.Linked))
	return &Loaded{Version: v, Commands: table}, nil
}

// latest picks the highest stable semantic version, falling back to the
// highest prerelease when no stable version is installed.
func latest(installed []Version) (Version, bool) {
	var pre *Version
	for i, v := range installed {
		sv, err := semver.NewVersion(v.Name)
		if err != nil {
			continue
		}
		if sv.Prerelease() == "" {
			return installed[i], true
		}
		if pre == nil {
			pre = &installed[i]
		}
	}
	if pre != nil {
		return *pre, true
	}
	return Version{}, false
}

// sortVersions orders valid semantic versions newest first, then the
// remaining names lexically.
func sortVersions(list []Version) {
	sort.SliceStable(list, func(i, j int) bool {
		vi, errI := semver.NewVersion(list[i].Name)
		vj, errJ := semver.NewVersion(list[j].Name)
		switch {
		case errI == nil && errJ == nil:
			if vi.Equal(vj) {
				return list[i].Name < list[j].Name
			}
			return vi.GreaterThan(vj)
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return list[i].Name < list[j].Name
		}
	})
}
