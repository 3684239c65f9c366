package config

import (
	"fmt"
	"net/url"
	"strings"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
	"git.home.luguber.info/inful/readmegen/internal/foundation/normalization"
	"git.home.luguber.info/inful/readmegen/internal/i18n"
)

// Providers accepted by the generation service.
var providerNormalizer = normalization.NewNormalizer(map[string]string{
	"google":     "google",
	"openrouter": "openrouter",
}, "")

func languageNormalizer() *normalization.Normalizer[string] {
	locales := i18n.Default().Locales()
	values := make(map[string]string, len(locales))
	for _, l := range locales {
		values[l] = l
	}
	return normalization.NewNormalizer(values, i18n.BaseLocale)
}

// Validate checks cfg and reports every problem in one config error.
func Validate(cfg *Config) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if u, err := url.Parse(cfg.Service.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("service.base_url must be an absolute http(s) URL, got %q", cfg.Service.BaseURL)
	}
	if !strings.HasPrefix(cfg.Service.Path, "/") {
		add("service.path must start with '/', got %q", cfg.Service.Path)
	}
	if cfg.Service.Timeout <= 0 {
		add("service.timeout must be positive, got %s", cfg.Service.Timeout)
	}
	if _, err := providerNormalizer.NormalizeWithError(cfg.Service.Provider); err != nil {
		add("service.provider: %v", err)
	}
	if !i18n.Default().HasLocale(cfg.UI.Language) {
		add("ui.language must be one of %v, got %q", i18n.Default().Locales(), cfg.UI.Language)
	}
	if cfg.UI.CopyFeedback <= 0 {
		add("ui.copy_feedback must be positive, got %s", cfg.UI.CopyFeedback)
	}
	if _, err := logLevelNormalizer.NormalizeWithError(string(cfg.Logging.Level)); err != nil {
		add("logging.level: %v", err)
	}

	if len(problems) == 0 {
		return nil
	}
	return ferrors.ConfigError("invalid configuration: "+strings.Join(problems, "; ")).
		WithContext("problems", len(problems)).
		Build()
}

// NormalizeLanguage maps raw to one of the catalog locales ("id_id" and
// "ID-ID" both become "id-ID").
func NormalizeLanguage(raw string) (string, error) {
	lang, err := languageNormalizer().NormalizeWithError(raw)
	if err != nil {
		return "", ferrors.ConfigError(fmt.Sprintf("unsupported language %q (available: %v)", raw, i18n.Default().Locales())).
			WithCause(err).
			Build()
	}
	return lang, nil
}
