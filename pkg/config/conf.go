package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultArtifacts = "model_artifacts"
	DefaultAddress   = "127.0.0.1:8080"
	DefaultFormat    = "text"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	appDirName     = ".examscore"
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600
)

var (
	formats    = []string{"json", "yaml", "text"}
	logFormats = []string{"text", "json"}
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
)

// Config holds the settings shared by all commands.
type Config struct {
	Artifacts string `yaml:"artifacts" json:"artifacts"`
	Bundle    string `yaml:"bundle,omitempty" json:"bundle,omitempty"`
	Address   string `yaml:"address" json:"address"`
	Format    string `yaml:"format" json:"format"`
	Workers   int    `yaml:"workers" json:"workers"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Artifacts: DefaultArtifacts,
		Address:   DefaultAddress,
		Format:    DefaultFormat,
		Workers:   runtime.NumCPU(),
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home dir: %w", err)
	}
	return filepath.Join(home, appDirName, configFileName), nil
}

// Load reads the config file at path over the defaults. Keys absent from
// the file keep their default value. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path required")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault loads path when set. An empty path falls back to the
// per-user file if it exists and to the defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	p, err := DefaultPath()
	if err != nil {
		return Default(), nil //nolint:nilerr // no home dir means no user config
	}
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(p)
}

// Save writes c to path, creating the parent directory when needed.
func Save(path string, c *Config) error {
	if path == "" {
		return errors.New("config path required")
	}
	if c == nil {
		return errors.New("config required")
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("failed to create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// Validate checks that every setting holds a usable value.
func (c *Config) Validate() error {
	var errs []error
	if c.Artifacts == "" && c.Bundle == "" {
		errs = append(errs, errors.New("artifacts or bundle required"))
	}
	if c.Address == "" {
		errs = append(errs, errors.New("address required"))
	}
	if !oneOf(c.Format, formats) {
		errs = append(errs, fmt.Errorf("format %q, expected one of [%s]", c.Format, strings.Join(formats, ", ")))
	}
	if !oneOf(c.LogFormat, logFormats) {
		errs = append(errs, fmt.Errorf("log_format %q, expected one of [%s]", c.LogFormat, strings.Join(logFormats, ", ")))
	}
	if !oneOf(c.LogLevel, logLevels) {
		errs = append(errs, fmt.Errorf("log_level %q, expected one of [%s]", c.LogLevel, strings.Join(logLevels, ", ")))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

func oneOf(v string, list []string) bool {
	for _, s := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
