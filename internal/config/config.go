package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	env "github.com/caarlos0/env/v11"
	"github.com/go-json-experiment/json"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. ASYNCGEN_OUTPUT.
const EnvPrefix = "ASYNCGEN_"

// FileNames lists the config files Discover looks for, in priority order.
var FileNames = []string{
	"asyncgen.config.json",
	"asyncgen.config.yaml",
	"asyncgen.config.yml",
}

// Config represents the asyncgen configuration.
type Config struct {
	Input     string `json:"input" yaml:"input" env:"INPUT"`
	Output    string `json:"output" yaml:"output" env:"OUTPUT"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace" env:"NAMESPACE"` // empty: derived from info.title

	Models      ModelsConfig      `json:"models" yaml:"models" envPrefix:"MODELS_"`
	Handlers    HandlersConfig    `json:"handlers" yaml:"handlers" envPrefix:"HANDLERS_"`
	Diagnostics DiagnosticsConfig `json:"diagnostics" yaml:"diagnostics" envPrefix:"DIAGNOSTICS_"`
	Log         LogConfig         `json:"log" yaml:"log" envPrefix:"LOG_"`
}

// ModelsConfig controls which schemas become model files.
type ModelsConfig struct {
	// EnvelopeFields marks wrapper schemas: an entity whose required list
	// contains every one of these fields is not emitted.
	EnvelopeFields []string `json:"envelopeFields,omitempty" yaml:"envelopeFields" env:"ENVELOPE_FIELDS"`
}

// HandlersConfig controls the handlers file.
type HandlersConfig struct {
	Enabled   bool     `json:"enabled" yaml:"enabled" env:"ENABLED"`
	ClassName string   `json:"className" yaml:"className" env:"CLASS_NAME"`
	FileName  string   `json:"fileName" yaml:"fileName" env:"FILE_NAME"`
	Usings    []string `json:"usings" yaml:"usings" env:"USINGS"`
}

// DiagnosticsConfig mirrors the --strict and --quiet flags.
type DiagnosticsConfig struct {
	Strict bool `json:"strict" yaml:"strict" env:"STRICT"`
	Quiet  bool `json:"quiet" yaml:"quiet" env:"QUIET"`
}

// LogConfig selects the logger level and output format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" env:"LEVEL"`
	Format string `json:"format" yaml:"format" env:"FORMAT"` // "console" or "json"
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Input:  "asyncapi.yaml",
		Output: "generated",
		Handlers: HandlersConfig{
			Enabled:   true,
			ClassName: "Handlers",
			FileName:  "Handlers.cs",
			Usings:    []string{"System", "System.Threading.Tasks"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Discover returns the first config file from FileNames present in dir,
// or "" when there is none.
func Discover(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load reads a config file, dispatching on its extension, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	case ".json":
		err = json.Unmarshal(data, &config)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}
	return &config, nil
}

// LoadOrDefault loads path when it is non-empty, otherwise the config
// discovered in dir, otherwise the defaults with environment overrides.
func LoadOrDefault(path, dir string) (*Config, string, error) {
	if path == "" {
		path = Discover(dir)
	}
	if path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}

	config := DefaultConfig()
	if err := config.ApplyEnv(); err != nil {
		return nil, "", err
	}
	return &config, "", nil
}

// ApplyEnv overrides fields from ASYNCGEN_* environment variables. Unset
// variables leave the current value untouched.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	return nil
}

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Input == "" {
		errs = append(errs, errors.New("input must not be empty"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output must not be empty"))
	}
	if c.Handlers.Enabled {
		if c.Handlers.ClassName == "" {
			errs = append(errs, errors.New("handlers.className must not be empty when handlers are enabled"))
		}
		if filepath.Ext(c.Handlers.FileName) != ".cs" {
			errs = append(errs, fmt.Errorf("handlers.fileName must have a .cs extension, got %q", c.Handlers.FileName))
		}
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Fingerprint returns a stable encoding of the fields that affect generated
// output or the run's outcome, used by the build cache.
func (c *Config) Fingerprint() []byte {
	out := struct {
		Namespace string         `json:"namespace"`
		Models    ModelsConfig   `json:"models"`
		Handlers  HandlersConfig `json:"handlers"`
		Strict    bool           `json:"strict"`
	}{c.Namespace, c.Models, c.Handlers, c.Diagnostics.Strict}
	data, err := json.Marshal(out, json.Deterministic(true))
	if err != nil {
		return nil
	}
	return data
}
