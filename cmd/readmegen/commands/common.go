package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/readmegen/internal/config"
	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
	"git.home.luguber.info/inful/readmegen/internal/generator"
	"git.home.luguber.info/inful/readmegen/internal/i18n"
	"git.home.luguber.info/inful/readmegen/internal/logfields"
	"git.home.luguber.info/inful/readmegen/internal/metrics"
	"git.home.luguber.info/inful/readmegen/internal/presenter"
	"git.home.luguber.info/inful/readmegen/internal/session"
)

// Global is shared by every command. Ctx is canceled on SIGINT/SIGTERM.
type Global struct {
	Ctx    context.Context
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer

	// Clipboard replaces the system clipboard when set.
	Clipboard presenter.Clipboard
}

// NewGlobal writes to the process streams.
func NewGlobal(ctx context.Context) *Global {
	return &Global{Ctx: ctx, Stdout: os.Stdout, Stderr: os.Stderr}
}

// CLI definition & global flags.
type CLI struct {
	Config   string           `short:"c" help:"Configuration file path" default:"readmegen.yaml"`
	Verbose  bool             `short:"v" help:"Enable verbose logging"`
	Language string           `short:"l" name:"lang" env:"READMEGEN_LANG" help:"Override ui.language (en-US, id-ID)"`
	Version  kong.VersionFlag `name:"version" help:"Show version and exit"`

	UI       UICmd       `cmd:"" default:"withargs" help:"Open the interactive README generator (default)"`
	Generate GenerateCmd `cmd:"" help:"Generate a README for one repository and print it to stdout"`
	Validate ValidateCmd `cmd:"" help:"Check whether a URL is an accepted GitHub repository URL"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
}

// KongOptions configures the parser for CLI; main and the tests share it.
func KongOptions(global *Global, version string) []kong.Option {
	return []kong.Option{
		kong.Name("readmegen"),
		kong.Description("Generate README.md files for GitHub repositories."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Bind(global),
	}
}

// AfterApply runs after flag parsing; sets up stderr logging until a command
// has loaded its configuration.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = newLogger(g.Stderr, level)
	slog.SetDefault(g.Logger)
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the configuration file and applies the --lang override.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Language != "" {
		lang, err := config.NormalizeLanguage(c.Language)
		if err != nil {
			return nil, err
		}
		cfg.UI.Language = lang
	}
	return cfg, nil
}

func (c *CLI) logLevel(cfg *config.Config) slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	return cfg.Logging.Level.SlogLevel()
}

// runtime is everything one command invocation needs to drive a generation.
type runtime struct {
	cfg       *config.Config
	logger    *slog.Logger
	loc       *i18n.Localizer
	prom      *metrics.PrometheusRecorder
	session   *session.Session
	presenter *presenter.Presenter
	closers   []io.Closer
}

type runtimeOptions struct {
	logOutput io.Writer
	generator generator.Generator
	clipboard presenter.Clipboard
}

// newRuntime wires the session and presenter from the configuration.
func newRuntime(cfg *config.Config, level slog.Level, opts runtimeOptions) (*runtime, error) {
	rt := &runtime{
		cfg:    cfg,
		loc:    i18n.New(cfg.UI.Language),
		logger: newLogger(opts.logOutput, level),
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Textfile != "" {
		rt.prom = metrics.NewPrometheusRecorder(nil)
		recorder = rt.prom
	}

	gen := opts.generator
	if gen == nil {
		client, err := generator.NewClient(generator.Options{
			BaseURL:   cfg.Service.BaseURL,
			Path:      cfg.Service.Path,
			Timeout:   cfg.Service.Timeout,
			Provider:  cfg.Service.Provider,
			Localizer: rt.loc,
			Logger:    rt.logger,
		})
		if err != nil {
			return nil, err
		}
		gen = client
		rt.logger.Debug("Using generation service", logfields.Endpoint(client.Endpoint()))
	}

	rt.session = session.New(gen,
		session.WithLogger(rt.logger),
		session.WithLocalizer(rt.loc),
		session.WithRecorder(recorder))

	presenterOpts := []presenter.Option{
		presenter.WithLogger(rt.logger),
		presenter.WithLocalizer(rt.loc),
		presenter.WithRecorder(recorder),
		presenter.WithCopyFeedback(cfg.UI.CopyFeedback),
		presenter.WithExporter(presenter.FileExporter{Dir: cfg.Export.Directory}),
	}
	if opts.clipboard != nil {
		presenterOpts = append(presenterOpts, presenter.WithClipboard(opts.clipboard))
	}
	rt.presenter = presenter.New(presenterOpts...)
	return rt, nil
}

// Close tears the session down and writes the metrics textfile when one is
// configured.
func (rt *runtime) Close() error {
	rt.session.Close()
	rt.presenter.Close()

	var err error
	if rt.prom != nil {
		err = rt.prom.WriteTextfile(rt.cfg.Metrics.Textfile)
		if err == nil {
			rt.logger.Debug("Wrote metrics textfile", logfields.Path(rt.cfg.Metrics.Textfile))
		}
	}
	for _, c := range rt.closers {
		_ = c.Close()
	}
	return err
}

// openLogFile opens path for appending, creating parent directories.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create log directory").
			WithContext("path", path).
			Build()
	}
	// #nosec G304 -- path comes from the user's own configuration
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open log file").
			WithContext("path", path).
			Build()
	}
	return f, nil
}
