// Package presenter shows a generated document and offers copy and export
// actions on it. Neither action touches the generation session.
package presenter

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/readmegen/internal/events"
	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
	"git.home.luguber.info/inful/readmegen/internal/i18n"
	"git.home.luguber.info/inful/readmegen/internal/logfields"
	"git.home.luguber.info/inful/readmegen/internal/markdown"
	"git.home.luguber.info/inful/readmegen/internal/metrics"
)

// DefaultCopyFeedback is how long a copy result stays visible.
const DefaultCopyFeedback = 2 * time.Second

// CopyStatus is the visible result of the last copy action.
type CopyStatus int

const (
	CopyIdle CopyStatus = iota
	CopySuccess
	CopyError
)

func (s CopyStatus) String() string {
	switch s {
	case CopySuccess:
		return "success"
	case CopyError:
		return "error"
	default:
		return "idle"
	}
}

// CopyStatusChanged is published whenever the copy status changes.
type CopyStatusChanged struct {
	Status CopyStatus
}

// Presenter holds the copy status and the capabilities used by the actions.
type Presenter struct {
	clock     clockwork.Clock
	clipboard Clipboard
	exporter  Exporter
	window    time.Duration
	loc       *i18n.Localizer
	logger    *slog.Logger
	recorder  metrics.Recorder
	bus       *events.Bus
	ownsBus   bool

	mu     sync.Mutex
	status CopyStatus
	seq    uint64
	revert clockwork.Timer
}

// Option configures a Presenter.
type Option func(*Presenter)

func WithClock(c clockwork.Clock) Option {
	return func(p *Presenter) { p.clock = c }
}

func WithClipboard(c Clipboard) Option {
	return func(p *Presenter) { p.clipboard = c }
}

func WithExporter(e Exporter) Option {
	return func(p *Presenter) { p.exporter = e }
}

// WithCopyFeedback sets how long a copy status stays before reverting to idle.
func WithCopyFeedback(d time.Duration) Option {
	return func(p *Presenter) { p.window = d }
}

func WithLocalizer(l *i18n.Localizer) Option {
	return func(p *Presenter) { p.loc = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Presenter) { p.logger = l }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(p *Presenter) { p.recorder = r }
}

// WithBus publishes CopyStatusChanged events on an existing bus.
func WithBus(b *events.Bus) Option {
	return func(p *Presenter) { p.bus = b }
}

// New creates a Presenter using the system clipboard and writing exports to
// the working directory unless told otherwise.
func New(opts ...Option) *Presenter {
	p := &Presenter{}
	for _, opt := range opts {
		opt(p)
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	if p.clipboard == nil {
		p.clipboard = SystemClipboard{}
	}
	if p.exporter == nil {
		p.exporter = FileExporter{Dir: "."}
	}
	if p.window <= 0 {
		p.window = DefaultCopyFeedback
	}
	if p.loc == nil {
		p.loc = i18n.New(i18n.BaseLocale)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.recorder = metrics.OrNoop(p.recorder)
	if p.bus == nil {
		p.bus = events.NewBus()
		p.ownsBus = true
	}
	return p
}

// Render formats doc for a terminal width cells wide.
func (p *Presenter) Render(doc string, width int) string {
	return markdown.RenderTerminal([]byte(doc), width)
}

// Title returns the first heading of doc.
func (p *Presenter) Title(doc string) string {
	return markdown.Title([]byte(doc))
}

// Copy places doc on the clipboard and shows the result for the feedback
// window. Copying again before the window ends restarts it.
func (p *Presenter) Copy(doc string) CopyStatus {
	err := p.clipboard.WriteText(doc)

	status := CopySuccess
	if err != nil {
		status = CopyError
		p.logger.Warn("Copy to clipboard failed", logfields.Error(err))
	} else {
		p.logger.Debug("Copied README to clipboard", logfields.Bytes(len(doc)))
	}
	p.recorder.IncCopyResult(err == nil)

	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.status = status
	if p.revert != nil {
		p.revert.Stop()
	}
	p.revert = p.clock.AfterFunc(p.window, func() { p.expire(seq) })
	p.mu.Unlock()

	p.bus.Offer(CopyStatusChanged{Status: status})
	return status
}

func (p *Presenter) expire(seq uint64) {
	p.mu.Lock()
	if p.seq != seq || p.status == CopyIdle {
		p.mu.Unlock()
		return
	}
	p.status = CopyIdle
	p.revert = nil
	p.mu.Unlock()

	p.logger.Debug("Copy status reverted", logfields.CopyStatus(CopyIdle.String()))
	p.bus.Offer(CopyStatusChanged{Status: CopyIdle})
}

// CopyStatus returns the current copy status.
func (p *Presenter) CopyStatus() CopyStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// CopyLabel returns the localized label for the current copy status.
func (p *Presenter) CopyLabel() string {
	switch p.CopyStatus() {
	case CopySuccess:
		return p.loc.T("copy.success")
	case CopyError:
		return p.loc.T("copy.error")
	default:
		return p.loc.T("copy.idle")
	}
}

// Export hands doc, byte for byte, to the exporter as README.md and returns
// where it ended up.
func (p *Presenter) Export(doc string) (string, error) {
	return p.export(MarkdownBlob(doc))
}

// ExportPage renders doc as a standalone HTML page and exports it under name.
func (p *Presenter) ExportPage(doc, name string) (string, error) {
	page, err := markdown.Page([]byte(doc), markdown.PageOptions{Lang: p.loc.Locale()})
	if err != nil {
		return "", err
	}
	return p.export(Blob{Name: name, ContentType: HTMLMediaType, Data: page})
}

func (p *Presenter) export(blob Blob) (string, error) {
	location, err := p.exporter.Export(blob)
	p.recorder.IncExportResult(err == nil)
	if err != nil {
		p.logger.Warn("Export failed", slog.String("name", blob.Name), logfields.Error(err))
		return "", ferrors.CapabilityError(p.loc.T("export.failed")).
			WithCause(err).
			WithContext("name", blob.Name).
			Build()
	}
	p.logger.Info("Exported document",
		logfields.Path(location),
		logfields.Bytes(len(blob.Data)),
		slog.String("content_type", blob.ContentType))
	return location, nil
}

// Subscribe returns a channel of copy status changes.
func (p *Presenter) Subscribe(buffer int) (<-chan CopyStatusChanged, func()) {
	return events.Subscribe[CopyStatusChanged](p.bus, buffer)
}

// Close cancels a pending status revert.
func (p *Presenter) Close() {
	p.mu.Lock()
	if p.revert != nil {
		p.revert.Stop()
		p.revert = nil
	}
	p.mu.Unlock()
	if p.ownsBus {
		p.bus.Close()
	}
}
