package config

import "github.com/spf13/viper"

// Default values
const (
	DefaultBuildTag     = "randconst"
	DefaultDirective    = "randconst:random"
	DefaultMarker       = "randconst.Random"
	DefaultOutputSuffix = "_randconst.go"
	DefaultBase         = "dec"
	DefaultByteOrder    = "native"
)

// SetDefaults configures default values for all configuration options.
// Every key is registered so RANDCONST_* variables can override it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("required_version", "")

	// Generate defaults
	v.SetDefault("generate.build_tag", DefaultBuildTag)
	v.SetDefault("generate.directive", DefaultDirective)
	v.SetDefault("generate.marker", DefaultMarker)
	v.SetDefault("generate.output_suffix", DefaultOutputSuffix)
	v.SetDefault("generate.jobs", 0) // GOMAXPROCS

	// Literal defaults
	v.SetDefault("literal.base", DefaultBase)
	v.SetDefault("literal.byte_order", DefaultByteOrder)

	v.SetDefault("target.goarch", "")
	v.SetDefault("hooks.post_generate", "")
	v.SetDefault("log.json", false)
}

// Default returns the configuration with only defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// defaults always decode
		panic(err)
	}
	return cfg
}
