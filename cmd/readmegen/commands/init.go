package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/readmegen/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Output directory for generated config file"`
}

func (i *InitCmd) Run(global *Global, root *CLI) error {
	// If the user specified an output directory, place the config there as "readmegen.yaml".
	if i.Output != "" {
		return RunInit(global, filepath.Join(i.Output, config.DefaultPath), i.Force)
	}
	return RunInit(global, root.Config, i.Force)
}

func RunInit(global *Global, configPath string, force bool) error {
	_, _ = fmt.Fprintf(global.Stdout, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		_, _ = fmt.Fprintln(global.Stdout, "Initialization failed")
		return err
	}
	_, _ = fmt.Fprintln(global.Stdout, "Initialized successfully")
	return nil
}
