// Package config loads readmegen.yaml.
//
// Loading order: .env.local and .env are read into the process environment
// (never overriding variables that are already set), ${VAR} references in the
// file are expanded, the YAML is decoded strictly, defaults fill the gaps and
// the result is validated. A missing file is not an error; the defaults are
// complete enough to talk to a local service.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "readmegen.yaml"

// Config is the complete readmegen configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	UI      UIConfig      `yaml:"ui"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServiceConfig describes the README generation service.
type ServiceConfig struct {
	BaseURL string        `yaml:"base_url"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
	// Provider is sent as aiProvider when set ("google" or "openrouter").
	Provider string `yaml:"provider"`
}

type UIConfig struct {
	Language string `yaml:"language"`
	// CopyFeedback is how long "Copied!"/"Failed!" stays visible.
	CopyFeedback time.Duration `yaml:"copy_feedback"`
}

type ExportConfig struct {
	Directory string `yaml:"directory"`
}

type LoggingConfig struct {
	Level LogLevel `yaml:"level"`
	// File receives log output while the terminal UI owns the screen.
	File string `yaml:"file"`
}

type MetricsConfig struct {
	// Textfile is written in Prometheus text format when the process exits.
	Textfile string `yaml:"textfile"`
}

// Load reads the configuration at path (DefaultPath when empty).
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := LoadEnvFiles(filepath.Dir(path)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Parse(nil)
	case err != nil:
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			WithContext("path", path).
			Build()
	}
	return Parse(data)
}

// Parse expands environment references in data, decodes it, applies
// defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse config file").Build()
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads .env.local and .env from dir. Variables already present in
// the environment win, and .env.local wins over .env.
func LoadEnvFiles(dir string) error {
	for _, name := range []string{".env.local", ".env"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "failed to load environment file").
				WithContext("path", p).
				Build()
		}
	}
	return nil
}
