package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bookshelf-dev/gitbook-cli/internal/branding"
	"github.com/bookshelf-dev/gitbook-cli/internal/platform"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"

	// VersionsDir is the default install directory name under Dir().
	VersionsDir = "versions"
)

// Config keys as they appear in config.yaml.
const (
	KeyInstallDir = "install_dir"
	KeyRegistry   = "registry"
	KeyPackage    = "package"
	KeyLinks      = "links"
)

// LinkTable maps a version alias to an absolute folder path.
type LinkTable map[string]string

// Config is the process-wide configuration loaded at startup.
type Config struct {
	InstallDir string
	Registry   string
	Package    string
	Links      LinkTable

	// overrides holds scalar keys whose loaded value came from the
	// environment rather than the config file.
	overrides map[string]override
}

type override struct {
	file string
	env  string
}

// Link returns the folder linked to name, if any.
func (c *Config) Link(name string) (string, bool) {
	folder, ok := c.Links[name]
	return folder, ok
}

// SetLink records folder as the resolution target for name.
func (c *Config) SetLink(name, folder string) {
	if c.Links == nil {
		c.Links = make(LinkTable)
	}
	c.Links[name] = folder
}

// RemoveLink deletes the link for name and reports whether one existed.
func (c *Config) RemoveLink(name string) bool {
	if _, ok := c.Links[name]; !ok {
		return false
	}
	delete(c.Links, name)
	return true
}

// LinkNames returns the link aliases in sorted order.
func (c *Config) LinkNames() []string {
	names := make([]string, 0, len(c.Links))
	for name := range c.Links {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keys lists the scalar settings Get and Set accept.
var Keys = []string{KeyInstallDir, KeyRegistry, KeyPackage}

// Get returns the value of a scalar setting.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case KeyInstallDir:
		return c.InstallDir, nil
	case KeyRegistry:
		return c.Registry, nil
	case KeyPackage:
		return c.Package, nil
	default:
		return "", fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys, ", "))
	}
}

// Set changes a scalar setting. Links are managed with SetLink.
func (c *Config) Set(key, value string) error {
	if value == "" {
		return fmt.Errorf("config key %q cannot be empty", key)
	}
	switch key {
	case KeyInstallDir:
		abs, err := filepath.Abs(value)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", value, err)
		}
		c.InstallDir = abs
	case KeyRegistry:
		c.Registry = strings.TrimRight(value, "/")
	case KeyPackage:
		c.Package = value
	default:
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys, ", "))
	}
	delete(c.overrides, key)
	return nil
}

// persisted returns the value Save writes for key. An environment override
// the caller has not replaced is written back as the file's own value.
func (c *Config) persisted(key, current string) string {
	if o, ok := c.overrides[key]; ok && current == o.env {
		return o.file
	}
	return current
}

// linkEntry is the on-disk form of a LinkTable row. Links are stored as a
// list because viper lowercases map keys and splits them on dots, which
// would mangle aliases such as "3.2.3".
type linkEntry struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

type fileConfig struct {
	InstallDir string      `mapstructure:"install_dir"`
	Registry   string      `mapstructure:"registry"`
	Package    string      `mapstructure:"package"`
	Links      []linkEntry `mapstructure:"links"`
}

// IOError reports a failure to read or write the configuration.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("config %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Dir returns the path to the config directory. It checks GITBOOK_DIR first,
// then falls back to ~/.gitbook.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("DIR")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// Store reads and writes a Config at a fixed location.
type Store struct {
	dir string
	v   *viper.Viper
}

// NewStore returns a Store rooted at dir (usually Dir()).
func NewStore(dir string) *Store {
	return &Store{dir: dir, v: newViper(dir, true)}
}

func newViper(dir string, env bool) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, fileName+"."+fileType))
	v.SetConfigType(fileType)
	if env {
		v.SetEnvPrefix(branding.EnvPrefix())
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	v.SetDefault(KeyInstallDir, filepath.Join(dir, VersionsDir))
	v.SetDefault(KeyRegistry, branding.RegistryURL())
	v.SetDefault(KeyPackage, branding.PackageName())
	return v
}

// Dir returns the directory holding the config file.
func (s *Store) Dir() string { return s.dir }

// FilePath returns the full path to the config file.
func (s *Store) FilePath() string {
	return filepath.Join(s.dir, fileName+"."+fileType)
}

// Init ensures the config file and install directory exist. Existing files
// are left untouched.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, platform.DirPermNormal); err != nil {
		return &IOError{Op: "init", Path: s.dir, Err: err}
	}

	if _, err := os.Stat(s.FilePath()); errors.Is(err, fs.ErrNotExist) {
		cfg, err := s.Load()
		if err != nil {
			return err
		}
		if err := s.Save(cfg); err != nil {
			return err
		}
	} else if err != nil {
		return &IOError{Op: "init", Path: s.FilePath(), Err: err}
	}

	cfg, err := s.Load()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.InstallDir, platform.DirPermNormal); err != nil {
		return &IOError{Op: "init", Path: cfg.InstallDir, Err: err}
	}
	return nil
}

// Load reads the config file, applying defaults and GITBOOK_* environment
// overrides. A missing file yields the defaults.
func (s *Store) Load() (*Config, error) {
	if err := s.v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, &IOError{Op: "read", Path: s.FilePath(), Err: err}
		}
	}

	var raw fileConfig
	if err := s.v.Unmarshal(&raw); err != nil {
		return nil, &IOError{Op: "decode", Path: s.FilePath(), Err: err}
	}

	cfg := &Config{
		InstallDir: raw.InstallDir,
		Registry:   raw.Registry,
		Package:    raw.Package,
		Links:      make(LinkTable, len(raw.Links)),
	}
	for _, l := range raw.Links {
		if l.Name == "" || l.Path == "" {
			continue
		}
		cfg.Links[l.Name] = l.Path
	}

	if err := s.recordOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// recordOverrides remembers the file value of every scalar key set through
// a GITBOOK_* variable so Save does not persist the override.
func (s *Store) recordOverrides(cfg *Config) error {
	var file *viper.Viper
	for _, key := range Keys {
		if os.Getenv(branding.EnvVar(strings.ToUpper(key))) == "" {
			continue
		}
		if file == nil {
			file = newViper(s.dir, false)
			if err := file.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return &IOError{Op: "read", Path: s.FilePath(), Err: err}
			}
		}
		current, _ := cfg.Get(key)
		if cfg.overrides == nil {
			cfg.overrides = make(map[string]override)
		}
		cfg.overrides[key] = override{file: file.GetString(key), env: current}
	}
	return nil
}

// Save writes cfg to the config file, replacing its previous contents.
// Values that Load took from the environment are written as they were in
// the file unless the caller changed them.
func (s *Store) Save(cfg *Config) error {
	if err := os.MkdirAll(s.dir, platform.DirPermNormal); err != nil {
		return &IOError{Op: "write", Path: s.dir, Err: err}
	}

	links := make([]map[string]string, 0, len(cfg.Links))
	for _, name := range cfg.LinkNames() {
		links = append(links, map[string]string{"name": name, "path": cfg.Links[name]})
	}

	out := viper.New()
	out.SetConfigType(fileType)
	out.Set(KeyInstallDir, cfg.persisted(KeyInstallDir, cfg.InstallDir))
	out.Set(KeyRegistry, cfg.persisted(KeyRegistry, cfg.Registry))
	out.Set(KeyPackage, cfg.persisted(KeyPackage, cfg.Package))
	out.Set(KeyLinks, links)

	if err := out.WriteConfigAs(s.FilePath()); err != nil {
		return &IOError{Op: "write", Path: s.FilePath(), Err: err}
	}
	// The file names private folders and registries.
	if err := platform.Chmod(s.FilePath(), platform.FilePermSecure); err != nil {
		return &IOError{Op: "write", Path: s.FilePath(), Err: err}
	}
	return nil
}
