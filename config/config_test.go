package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/teranos/randconst/version"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "randconst", cfg.Generate.BuildTag)
	assert.Equal(t, "randconst:random", cfg.Generate.Directive)
	assert.Equal(t, "randconst.Random", cfg.Generate.Marker)
	assert.Equal(t, "_randconst.go", cfg.Generate.OutputSuffix)
	assert.Equal(t, 0, cfg.Generate.Jobs)
	assert.Equal(t, "dec", cfg.Literal.Base)
	assert.Equal(t, "native", cfg.Literal.ByteOrder)
	assert.Empty(t, cfg.Target.GOARCH)
	assert.Empty(t, cfg.Hooks.PostGenerate)
	assert.False(t, cfg.Log.JSON)
	assert.Empty(t, cfg.Path)

	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[generate]
jobs = 2
output_suffix = "_gen.go"

[literal]
base = "hex"

[target]
goarch = "386"
`)
	t.Setenv("RANDCONST_GENERATE_JOBS", "8")
	t.Setenv("RANDCONST_LITERAL_BYTE_ORDER", "big")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, 8, cfg.Generate.Jobs, "env overrides file")
	assert.Equal(t, "_gen.go", cfg.Generate.OutputSuffix)
	assert.Equal(t, "hex", cfg.Literal.Base)
	assert.Equal(t, "big", cfg.Literal.ByteOrder)
	assert.Equal(t, "386", cfg.Target.GOARCH)
	assert.Equal(t, "randconst", cfg.Generate.BuildTag, "unset keys keep defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_SearchesUpwards(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "[literal]\nbase = \"hex\"\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	t.Chdir(nested)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "hex", cfg.Literal.Base)

	want, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(cfg.Path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindProjectConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "x", "y", "z")
	require.NoError(t, os.MkdirAll(nested, 0755))

	assert.Empty(t, FindProjectConfig(nested))

	path := writeConfig(t, filepath.Join(root, "x"), "")
	assert.Equal(t, path, FindProjectConfig(nested))
	assert.Empty(t, FindProjectConfig(root), "search never descends")

	// A directory named randconst.toml is not a config file
	require.NoError(t, os.Mkdir(filepath.Join(nested, FileName), 0755))
	assert.Equal(t, path, FindProjectConfig(nested))
}

func TestUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
required_version = ">= 0.1"
colour = "blue"

[generate]
jobs = 1
suffix = "_x.go"

[literals]
base = "hex"
`)
	keys, err := UnknownKeys(path)
	require.NoError(t, err)
	assert.Subset(t, keys, []string{"colour", "generate.suffix", "literals.base"})
	assert.NotContains(t, keys, "generate.jobs")
	assert.NotContains(t, keys, "required_version")
}

func TestUnknownKeys_InvalidTOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[generate\n")
	_, err := UnknownKeys(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"custom tag", func(c *Config) { c.Generate.BuildTag = "gen_random" }, ""},
		{"empty tag", func(c *Config) { c.Generate.BuildTag = "" }, "generate.build_tag"},
		{"tag expression", func(c *Config) { c.Generate.BuildTag = "a && b" }, "generate.build_tag"},
		{"negated tag", func(c *Config) { c.Generate.BuildTag = "!x" }, "generate.build_tag"},
		{"empty directive", func(c *Config) { c.Generate.Directive = "" }, "generate.directive"},
		{"directive with slashes", func(c *Config) { c.Generate.Directive = "//x:y" }, "generate.directive"},
		{"directive with space", func(c *Config) { c.Generate.Directive = "x y" }, "generate.directive"},
		{"bare marker", func(c *Config) { c.Generate.Marker = "Random" }, ""},
		{"marker with call", func(c *Config) { c.Generate.Marker = "pkg.Random()" }, "generate.marker"},
		{"marker too deep", func(c *Config) { c.Generate.Marker = "a.b.c" }, "generate.marker"},
		{"suffix without .go", func(c *Config) { c.Generate.OutputSuffix = "_gen" }, "generate.output_suffix"},
		{"test suffix", func(c *Config) { c.Generate.OutputSuffix = "_test.go" }, "generate.output_suffix"},
		{"negative jobs", func(c *Config) { c.Generate.Jobs = -1 }, "generate.jobs must be >= 0, got -1"},
		{"hex base", func(c *Config) { c.Literal.Base = "hex" }, ""},
		{"octal base", func(c *Config) { c.Literal.Base = "oct" }, "literal.base"},
		{"big endian", func(c *Config) { c.Literal.ByteOrder = "big" }, ""},
		{"middle endian", func(c *Config) { c.Literal.ByteOrder = "middle" }, "literal.byte_order"},
		{"known goarch", func(c *Config) { c.Target.GOARCH = "arm" }, ""},
		{"unknown goarch", func(c *Config) { c.Target.GOARCH = "z80" }, "target.goarch"},
		{"bad required_version", func(c *Config) { c.RequiredVersion = "soon" }, "invalid required_version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_RequiredVersion(t *testing.T) {
	orig := version.Version
	t.Cleanup(func() { version.Version = orig })
	version.Version = "0.5.0"

	cfg := Default()
	cfg.RequiredVersion = ">= 0.4"
	assert.NoError(t, cfg.Validate())

	cfg.RequiredVersion = ">= 1.0"
	assert.ErrorContains(t, cfg.Validate(), "does not satisfy")
}

func TestWriteDefaults_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, WriteDefaults(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Path = ""
	assert.Equal(t, Default(), cfg)

	keys, err := UnknownKeys(path)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestWriteDefaults_RotatesBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	for i := 1; i <= 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("#", i)), 0644))
		require.NoError(t, WriteDefaults(path))
	}

	read := func(name string) string {
		data, err := os.ReadFile(name)
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, "#####", read(path+".back1"))
	assert.Equal(t, "####", read(path+".back2"))
	assert.Equal(t, "###", read(path+".back3"))
	assert.NoFileExists(t, path+".back4")
}

func TestWriteDefaults_NoBackupForNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, WriteDefaults(path))
	assert.NoFileExists(t, path+".back1")
}

func TestMarshal(t *testing.T) {
	cfg := Default()
	cfg.Hooks.PostGenerate = "gofmt -l ."
	cfg.Path = "/somewhere/randconst.toml"

	out, err := Marshal(cfg, "toml")
	require.NoError(t, err)
	assert.Contains(t, string(out), "[generate]")
	assert.Contains(t, string(out), "post_generate = ")
	assert.Contains(t, string(out), "gofmt -l .")
	assert.NotContains(t, string(out), "somewhere")

	out, err = Marshal(cfg, "yaml")
	require.NoError(t, err)
	var fromYAML Config
	require.NoError(t, yaml.Unmarshal(out, &fromYAML))
	assert.Equal(t, cfg.Generate, fromYAML.Generate)
	assert.Equal(t, cfg.Hooks, fromYAML.Hooks)

	out, err = Marshal(cfg, "json")
	require.NoError(t, err)
	var fromJSON map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &fromJSON))
	assert.Contains(t, fromJSON, "literal")
	assert.NotContains(t, fromJSON, "Path")

	_, err = Marshal(cfg, "xml")
	assert.ErrorContains(t, err, "unknown format")
}
