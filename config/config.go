// Package config loads randconst.toml.
//
// Precedence (lowest to highest): defaults < project file < RANDCONST_* env vars.
// The project file is found by walking up from the working directory, or
// named explicitly with --config.
package config

// Config represents the randconst configuration
type Config struct {
	// RequiredVersion is a semver constraint the binary must satisfy (e.g. ">= 0.4, < 1")
	RequiredVersion string `mapstructure:"required_version" toml:"required_version" yaml:"required_version" json:"required_version"`

	Generate GenerateConfig `mapstructure:"generate" toml:"generate" yaml:"generate" json:"generate"`
	Literal  LiteralConfig  `mapstructure:"literal" toml:"literal" yaml:"literal" json:"literal"`
	Target   TargetConfig   `mapstructure:"target" toml:"target" yaml:"target" json:"target"`
	Hooks    HooksConfig    `mapstructure:"hooks" toml:"hooks" yaml:"hooks" json:"hooks"`
	Log      LogConfig      `mapstructure:"log" toml:"log" yaml:"log" json:"log"`

	// Path is the file the configuration was read from; empty when only
	// defaults and environment apply.
	Path string `mapstructure:"-" toml:"-" yaml:"-" json:"-"`
}

// GenerateConfig configures template discovery and splicing
type GenerateConfig struct {
	BuildTag     string `mapstructure:"build_tag" toml:"build_tag" yaml:"build_tag" json:"build_tag"`             // tag that marks templates (default: randconst)
	Directive    string `mapstructure:"directive" toml:"directive" yaml:"directive" json:"directive"`             // comment directive without "//" (default: randconst:random)
	Marker       string `mapstructure:"marker" toml:"marker" yaml:"marker" json:"marker"`                         // inline call spelling (default: randconst.Random)
	OutputSuffix string `mapstructure:"output_suffix" toml:"output_suffix" yaml:"output_suffix" json:"output_suffix"` // companion file suffix (default: _randconst.go)
	Jobs         int    `mapstructure:"jobs" toml:"jobs" yaml:"jobs" json:"jobs"`                                 // concurrent templates, 0 = GOMAXPROCS
}

// LiteralConfig configures how drawn values are written
type LiteralConfig struct {
	Base      string `mapstructure:"base" toml:"base" yaml:"base" json:"base"`                   // dec or hex
	ByteOrder string `mapstructure:"byte_order" toml:"byte_order" yaml:"byte_order" json:"byte_order"` // native, little or big
}

// TargetConfig selects the architecture pointer-sized types are drawn for
type TargetConfig struct {
	GOARCH string `mapstructure:"goarch" toml:"goarch" yaml:"goarch" json:"goarch"` // empty = $GOARCH, then the host
}

// HooksConfig configures commands run around a generation run
type HooksConfig struct {
	PostGenerate string `mapstructure:"post_generate" toml:"post_generate" yaml:"post_generate" json:"post_generate"` // shell-quoted command line, run after a successful run
}

// LogConfig configures logging
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" yaml:"json" json:"json"`
}

// File names and permissions
const (
	FileName  = "randconst.toml"
	EnvPrefix = "RANDCONST"

	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
