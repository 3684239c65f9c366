// Package session drives one README generation at a time through
// Idle → InFlight → Succeeded/Failed → Idle.
//
// A Session is the single writer of its state. Ticks from the elapsed timer
// and results from the generator arrive on their own goroutines; both are
// accepted only while the phase is InFlight and they carry the attempt id that
// is current, so a late tick or result from a superseded attempt is dropped.
// Every change is published as a Snapshot on the session's event bus.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/readmegen/internal/elapsed"
	"git.home.luguber.info/inful/readmegen/internal/events"
	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
	"git.home.luguber.info/inful/readmegen/internal/generator"
	"git.home.luguber.info/inful/readmegen/internal/githuburl"
	"git.home.luguber.info/inful/readmegen/internal/i18n"
	"git.home.luguber.info/inful/readmegen/internal/logfields"
	"git.home.luguber.info/inful/readmegen/internal/metrics"
)

var (
	// ErrInFlight is returned by Submit while a generation is outstanding.
	ErrInFlight = ferrors.RuntimeError("a generation is already in flight").Warning().Build()

	// ErrClosed is returned once the session has been closed.
	ErrClosed = ferrors.RuntimeError("session is closed").Build()
)

// Session is the generation state machine.
type Session struct {
	gen      generator.Generator
	clock    clockwork.Clock
	timer    *elapsed.Timer
	loc      *i18n.Localizer
	logger   *slog.Logger
	recorder metrics.Recorder
	bus      *events.Bus
	ownsBus  bool

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	state  Snapshot
	done   chan struct{}
	closed bool
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used for timing. Tests pass a fake clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithLocalizer sets the language of validation messages.
func WithLocalizer(l *i18n.Localizer) Option {
	return func(s *Session) { s.loc = l }
}

// WithBus publishes snapshots on an existing bus. The caller keeps ownership
// and Close will not close it.
func WithBus(b *events.Bus) Option {
	return func(s *Session) { s.bus = b }
}

// New creates an Idle session that generates with gen.
func New(gen generator.Generator, opts ...Option) *Session {
	s := &Session{gen: gen}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.loc == nil {
		s.loc = i18n.New(i18n.BaseLocale)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.recorder = metrics.OrNoop(s.recorder)
	if s.bus == nil {
		s.bus = events.NewBus()
		s.ownsBus = true
	}
	s.timer = elapsed.New(s.clock)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel of snapshots. Slow readers only miss
// intermediate snapshots, never the latest one.
func (s *Session) Subscribe(buffer int) (<-chan Snapshot, func()) {
	return events.Subscribe[Snapshot](s.bus, buffer)
}

// Submit validates raw and, when it is a repository URL, starts a generation.
//
// An invalid URL leaves the session untouched and returns a validation error
// whose Message is the localized form error. While InFlight, Submit does
// nothing and returns ErrInFlight.
func (s *Session) Submit(raw string) error {
	outcome := githuburl.Validate(raw)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state.Phase == InFlight {
		attempt := s.state.AttemptID
		s.mu.Unlock()
		s.recorder.IncSubmission(metrics.SubmitBusy)
		s.logger.Debug("Submit ignored while in flight", logfields.AttemptID(attempt))
		return ErrInFlight
	}
	if !outcome.Valid {
		s.mu.Unlock()
		s.recorder.IncSubmission(metrics.SubmitInvalid)
		return ferrors.ValidationError(s.loc.T("validation."+string(outcome.Reason))).
			WithContext("reason", string(outcome.Reason)).
			Build()
	}

	id := uuid.NewString()
	s.state = Snapshot{
		Phase:     InFlight,
		InputURL:  outcome.URL,
		AttemptID: id,
	}
	s.done = make(chan struct{})
	s.state.StartedAt = s.timer.Start(func(seconds int) { s.tick(id, seconds) })
	snap := s.state
	s.mu.Unlock()

	s.recorder.IncSubmission(metrics.SubmitAccepted)
	s.recorder.SetInFlight(true)
	s.logger.Info("Generation started",
		logfields.AttemptID(id),
		logfields.Phase(snap.Phase.String()),
		logfields.Repository(snap.InputURL))
	s.bus.Offer(snap)

	go s.run(id, outcome.URL)
	return nil
}

func (s *Session) run(id, repoURL string) {
	s.finish(id, s.gen.Generate(s.ctx, repoURL))
}

func (s *Session) tick(id string, seconds int) {
	s.mu.Lock()
	if s.closed || s.state.Phase != InFlight || s.state.AttemptID != id || seconds <= s.state.ElapsedSeconds {
		s.mu.Unlock()
		return
	}
	s.state.ElapsedSeconds = seconds
	snap := s.state
	s.mu.Unlock()

	s.bus.Offer(snap)
}

func (s *Session) finish(id string, res generator.Result) {
	if res.OK() && res.Document == "" {
		res = generator.Failure(ferrors.ServiceError(s.loc.T("generate.empty")).Build())
	}

	s.mu.Lock()
	if s.closed || s.state.Phase != InFlight || s.state.AttemptID != id {
		s.mu.Unlock()
		s.recorder.IncGenerationOutcome(metrics.OutcomeDiscarded)
		s.logger.Debug("Discarded stale generation result", logfields.AttemptID(id))
		return
	}

	d, _ := s.timer.Stop()
	s.state.Duration = d
	if whole := int(d.Seconds()); whole > s.state.ElapsedSeconds {
		s.state.ElapsedSeconds = whole
	}

	outcome := metrics.OutcomeSuccess
	if res.OK() {
		s.state.Phase = Succeeded
		s.state.Document = res.Document
	} else {
		outcome = metrics.OutcomeFailed
		s.state.Phase = Failed
		s.state.ErrorMessage = res.Message()
	}
	close(s.done)
	snap := s.state
	s.mu.Unlock()

	s.recorder.SetInFlight(false)
	s.recorder.IncGenerationOutcome(outcome)
	s.recorder.ObserveGenerationDuration(outcome, d)

	attrs := []any{
		logfields.AttemptID(id),
		logfields.Phase(snap.Phase.String()),
		logfields.Repository(snap.InputURL),
		logfields.Duration(d),
	}
	if res.OK() {
		s.logger.Info("Generation succeeded", append(attrs, logfields.Bytes(len(snap.Document)))...)
	} else {
		s.logger.Info("Generation failed", append(attrs, logfields.Error(res.Err))...)
	}
	s.bus.Offer(snap)
}

// Reset returns a finished session to Idle, clearing the document, the error
// and the frozen duration. It does nothing while InFlight and reports whether
// the state changed.
func (s *Session) Reset() bool {
	s.mu.Lock()
	if s.closed || s.state.Phase == InFlight {
		s.mu.Unlock()
		return false
	}
	from := s.state.Phase
	s.state = Snapshot{Phase: Idle, InputURL: s.state.InputURL}
	snap := s.state
	s.mu.Unlock()

	s.logger.Debug("Session reset", logfields.Phase(snap.Phase.String()), slog.String("from", from.String()))
	s.bus.Offer(snap)
	return true
}

// Wait blocks until the current attempt leaves InFlight or ctx is done, and
// returns the snapshot at that point. Without an outstanding attempt it
// returns immediately.
func (s *Session) Wait(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state, ErrClosed
	}
	return s.state, nil
}

// Close halts the timer, cancels an outstanding request and drops any result
// that arrives afterwards. Subscribers of a session-owned bus see their
// channels closed. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	wasInFlight := s.state.Phase == InFlight
	if wasInFlight {
		s.timer.Stop()
		close(s.done)
	}
	attempt := s.state.AttemptID
	s.mu.Unlock()

	s.cancel()
	if wasInFlight {
		s.recorder.SetInFlight(false)
		s.logger.Info("Session closed during generation", logfields.AttemptID(attempt))
	}
	if s.ownsBus {
		s.bus.Close()
	}
}
