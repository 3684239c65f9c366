package commands

import (
	"fmt"
	"sync"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
	"git.home.luguber.info/inful/readmegen/internal/presenter"
	"git.home.luguber.info/inful/readmegen/internal/session"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	URL    string `arg:"" name:"url" help:"GitHub repository URL (https://github.com/<owner>/<repo>)"`
	Export bool   `short:"e" help:"Also write README.md to export.directory"`
	HTML   string `name:"html" placeholder:"FILE" help:"Also write a standalone HTML preview to export.directory under this name"`
	Copy   bool   `help:"Copy the README to the system clipboard"`
	Quiet  bool   `short:"q" help:"Do not report progress on stderr"`
}

func (g *GenerateCmd) Run(global *Global, root *CLI) (err error) {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, root.logLevel(cfg), runtimeOptions{
		logOutput: global.Stderr,
		clipboard: global.Clipboard,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); err == nil {
			err = cerr
		}
	}()

	snap, err := g.generate(global, rt)
	if err != nil {
		return err
	}
	return g.deliver(global, rt, snap.Document)
}

// generate runs one session to completion, reporting the seconds counter on
// stderr while the service works.
func (g *GenerateCmd) generate(global *Global, rt *runtime) (session.Snapshot, error) {
	snaps, unsubscribe := rt.session.Subscribe(8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for s := range snaps {
			if s.Phase == session.InFlight && !g.Quiet {
				_, _ = fmt.Fprintf(global.Stderr, "\r%s", rt.loc.T("ui.generating", s.ElapsedSeconds))
			}
		}
	}()
	stop := func() {
		unsubscribe()
		wg.Wait()
		if !g.Quiet {
			_, _ = fmt.Fprintln(global.Stderr)
		}
	}

	if err := rt.session.Submit(g.URL); err != nil {
		unsubscribe()
		wg.Wait()
		return session.Snapshot{}, err
	}

	snap, err := rt.session.Wait(global.Ctx)
	stop()
	if err != nil {
		return snap, ferrors.WrapError(err, ferrors.CategoryRuntime, "generation interrupted").Build()
	}
	if snap.Phase == session.Failed {
		return snap, ferrors.ServiceError(snap.ErrorMessage).
			WithContext("repository", snap.InputURL).
			Build()
	}
	if !g.Quiet {
		_, _ = fmt.Fprintln(global.Stderr, rt.loc.T("ui.result_timed", snap.Elapsed()))
	}
	return snap, nil
}

// deliver prints doc and runs the requested actions on it.
func (g *GenerateCmd) deliver(global *Global, rt *runtime, doc string) error {
	if _, err := fmt.Fprint(global.Stdout, doc); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write README to stdout").Build()
	}

	if g.Export {
		path, err := rt.presenter.Export(doc)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(global.Stderr, rt.loc.T("export.done", path))
	}
	if g.HTML != "" {
		path, err := rt.presenter.ExportPage(doc, g.HTML)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(global.Stderr, rt.loc.T("export.done", path))
	}
	if g.Copy {
		if rt.presenter.Copy(doc) == presenter.CopyError {
			return ferrors.CapabilityError(rt.loc.T("copy.failed")).Build()
		}
		_, _ = fmt.Fprintln(global.Stderr, rt.loc.T("copy.success"))
	}
	return nil
}
