package commands

import (
	"io"

	"git.home.luguber.info/inful/readmegen/internal/tui"
)

// UICmd implements the interactive 'ui' command.
type UICmd struct {
	URL string `arg:"" optional:"" name:"url" help:"Prefill the repository URL"`
}

func (u *UICmd) Run(global *Global, root *CLI) (err error) {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal; logs go to a file or nowhere.
	var logOutput io.Writer = io.Discard
	var logFile io.Closer
	if cfg.Logging.File != "" {
		f, err := openLogFile(cfg.Logging.File)
		if err != nil {
			return err
		}
		logOutput, logFile = f, f
	}

	rt, err := newRuntime(cfg, root.logLevel(cfg), runtimeOptions{logOutput: logOutput})
	if err != nil {
		if logFile != nil {
			_ = logFile.Close()
		}
		return err
	}
	if logFile != nil {
		rt.closers = append(rt.closers, logFile)
	}
	defer func() {
		if cerr := rt.Close(); err == nil {
			err = cerr
		}
	}()

	rt.logger.Info("Starting terminal UI", "language", cfg.UI.Language)
	model := tui.NewModel(rt.session, rt.presenter, rt.loc).WithInput(u.URL)
	return tui.Run(global.Ctx, model)
}
