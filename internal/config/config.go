package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/indaco/projfind/internal/core"
	"github.com/indaco/projfind/internal/enumerate"
	"github.com/indaco/projfind/internal/marker"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = ".projfind.yaml"

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "PROJFIND_CONFIG"

// Config is the main configuration structure for projfind.
type Config struct {
	Paths         []string `yaml:"paths,omitempty"`
	MaxDepth      *int     `yaml:"max_depth,omitempty"`
	MaxResults    *int     `yaml:"max_results,omitempty"`
	Jobs          *int     `yaml:"jobs,omitempty"`
	Enumerator    string   `yaml:"enumerator,omitempty"`
	Exclude       []string `yaml:"exclude,omitempty"`
	AlwaysSurface []string `yaml:"always_surface,omitempty"`
	Format        string   `yaml:"format,omitempty"`
	Verbose       bool     `yaml:"verbose,omitempty"`
	NoColor       bool     `yaml:"no_color,omitempty"`
	Theme         string   `yaml:"theme,omitempty"`
}

// Default returns a Config with every optional field set to its default.
func Default() *Config {
	depth := core.DefaultMaxDepth
	results := 0
	jobs := 0
	return &Config{
		Paths:      []string{"."},
		MaxDepth:   &depth,
		MaxResults: &results,
		Jobs:       &jobs,
		Enumerator: string(enumerate.ModeAuto),
		Format:     "text",
	}
}

// GetMaxDepth returns the configured depth or core.DefaultMaxDepth.
func (c *Config) GetMaxDepth() int {
	if c == nil || c.MaxDepth == nil {
		return core.DefaultMaxDepth
	}
	return *c.MaxDepth
}

// GetMaxResults returns the configured cap; 0 means unlimited.
func (c *Config) GetMaxResults() int {
	if c == nil || c.MaxResults == nil {
		return 0
	}
	return *c.MaxResults
}

// GetJobs returns the configured worker count; 0 means one per CPU.
func (c *Config) GetJobs() int {
	if c == nil || c.Jobs == nil {
		return 0
	}
	return *c.Jobs
}

// GetPaths returns the start paths, defaulting to the working directory.
func (c *Config) GetPaths() []string {
	if c == nil || len(c.Paths) == 0 {
		return []string{"."}
	}
	return c.Paths
}

// GetEnumerator returns the enumerator mode, defaulting to auto.
func (c *Config) GetEnumerator() enumerate.Mode {
	if c == nil || c.Enumerator == "" {
		return enumerate.ModeAuto
	}
	return enumerate.Mode(c.Enumerator)
}

// GetExclude returns the exclude patterns, or nil for the defaults.
func (c *Config) GetExclude() []string {
	if c == nil {
		return nil
	}
	return c.Exclude
}

// GetAlwaysSurface returns the always-surface kinds, or nil for the defaults.
func (c *Config) GetAlwaysSurface() []marker.Kind {
	if c == nil || c.AlwaysSurface == nil {
		return nil
	}
	kinds := make([]marker.Kind, 0, len(c.AlwaysSurface))
	for _, k := range c.AlwaysSurface {
		kinds = append(kinds, marker.Kind(strings.TrimSpace(k)))
	}
	return kinds
}

// LoadConfigFn is the loader used by the CLI; tests may replace it.
var LoadConfigFn = loadConfig

// loadConfig reads the config file named by path, by PROJFIND_CONFIG, or
// .projfind.yaml in the working directory, in that order. A missing default
// file yields (nil, nil); a missing file that was named explicitly is an error.
func loadConfig(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultConfigFile
		explicit = false
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil, nil
		}
		return nil, &ConfigError{Field: "config", Value: path, Err: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, &ConfigError{Field: "config", Value: path, Err: err}
	}
	return cfg, nil
}

// Parse decodes a YAML config document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return &cfg, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ConfigError is a fatal configuration problem detected before discovery starts.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CanonicalPaths makes start paths absolute and resolves symlinks so that the
// same directory reached through different spellings is searched once.
func CanonicalPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, &ConfigError{Field: "path", Value: p, Err: err}
		}
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return nil, &ConfigError{Field: "path", Value: p, Err: err}
		}
		out = append(out, resolved)
	}
	return out, nil
}
