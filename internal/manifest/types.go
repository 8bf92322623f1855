package manifest

// Manifest is the command table declared by an installed version.
type Manifest struct {
	Name     string        `yaml:"name,omitempty" json:"name,omitempty" toml:"name,omitempty"`
	Version  string        `yaml:"version,omitempty" json:"version,omitempty" toml:"version,omitempty"`
	Commands []CommandSpec `yaml:"commands" json:"commands" toml:"commands"`
}

// CommandSpec describes one delegated command.
type CommandSpec struct {
	Name        string            `yaml:"name" json:"name" toml:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty" toml:"description,omitempty"`
	Run         []string          `yaml:"run" json:"run" toml:"run"`
	Env         map[string]string `yaml:"env,omitempty" json:"env,omitempty" toml:"env,omitempty"`
}

// Supported manifest formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatTOML = "toml"
)

// FileNames is the lookup order for manifest files inside a version root.
var FileNames = []string{
	"commands.yaml",
	"commands.yml",
	"commands.json",
	"commands.toml",
}
