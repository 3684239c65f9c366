package config

import (
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
)

const exampleHeader = `# readmegen configuration.
# ${VAR} references are expanded from the environment; .env and .env.local
# next to this file are loaded first.
#
# service.provider: "", "google" or "openrouter"
# ui.language:      en-US or id-ID
# logging.file:     where logs go while the terminal UI is open
# metrics.textfile: Prometheus textfile written on exit
`

// Init writes an example configuration file with every default spelled out.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal config").Build()
	}

	// #nosec G306 -- configuration contains no secrets by default
	if err := os.WriteFile(configPath, append([]byte(exampleHeader), data...), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
