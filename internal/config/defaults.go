package config

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/readmegen/internal/i18n"
)

const (
	DefaultBaseURL      = "http://localhost:8001"
	DefaultServicePath  = "/generate-readme"
	DefaultTimeout      = 120 * time.Second
	DefaultCopyFeedback = 2 * time.Second
	DefaultExportDir    = "."
)

// Default returns a configuration with every field at its default.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills zero values and canonicalizes enum-like fields.
func applyDefaults(cfg *Config) {
	cfg.Service.BaseURL = strings.TrimSpace(cfg.Service.BaseURL)
	if cfg.Service.BaseURL == "" {
		cfg.Service.BaseURL = DefaultBaseURL
	}
	if cfg.Service.Path == "" {
		cfg.Service.Path = DefaultServicePath
	}
	if cfg.Service.Timeout == 0 {
		cfg.Service.Timeout = DefaultTimeout
	}
	cfg.Service.Provider = strings.ToLower(strings.TrimSpace(cfg.Service.Provider))

	if strings.TrimSpace(cfg.UI.Language) == "" {
		cfg.UI.Language = i18n.BaseLocale
	} else if loc, err := languageNormalizer().NormalizeWithError(cfg.UI.Language); err == nil {
		cfg.UI.Language = loc
	}
	if cfg.UI.CopyFeedback == 0 {
		cfg.UI.CopyFeedback = DefaultCopyFeedback
	}

	if strings.TrimSpace(cfg.Export.Directory) == "" {
		cfg.Export.Directory = DefaultExportDir
	}

	if lvl, err := logLevelNormalizer.NormalizeWithError(string(cfg.Logging.Level)); err == nil {
		cfg.Logging.Level = lvl
	}
}
