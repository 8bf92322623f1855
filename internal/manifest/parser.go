package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// Find returns the path of the first manifest file present in dir.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fmt.Errorf("no command manifest (%s) found in %s", strings.Join(FileNames, ", "), dir)
}

// FormatOf returns the manifest format implied by the file extension.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// ParseFile reads and decodes a manifest file without schema validation.
func ParseFile(path string) (*Manifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, FormatOf(path))
}

// Parse decodes manifest bytes in the given format.
func Parse(data []byte, format string) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing TOML manifest: %w", err)
		}
	case FormatYAML, FormatJSON:
		// JSON is a subset of YAML, so one decoder serves both.
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing %s manifest: %w", strings.ToUpper(format), err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
	return &m, nil
}

// Load finds, validates, and decodes the manifest in dir. Schema violations
// are reported as a single error listing every issue.
func Load(dir string) (*Manifest, string, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, "", err
	}

	data, err := readFile(path)
	if err != nil {
		return nil, path, err
	}

	format := FormatOf(path)
	result, err := Validate(data, format)
	if err != nil {
		return nil, path, fmt.Errorf("validating %s: %w", path, err)
	}
	if !result.Valid {
		return nil, path, fmt.Errorf("invalid manifest %s: %s", path, result.Summary())
	}

	m, err := Parse(data, format)
	if err != nil {
		return nil, path, fmt.Errorf("%s: %w", path, err)
	}
	return m, path, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
