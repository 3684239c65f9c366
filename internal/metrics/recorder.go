package metrics

import "time"

// SubmitLabel enumerates how a submit request was handled.
type SubmitLabel string

const (
	SubmitAccepted SubmitLabel = "accepted"
	SubmitInvalid  SubmitLabel = "invalid"
	SubmitBusy     SubmitLabel = "busy"
)

// OutcomeLabel enumerates how a generation attempt ended.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeFailed  OutcomeLabel = "failed"
	// OutcomeDiscarded counts results that arrived after the session moved on.
	OutcomeDiscarded OutcomeLabel = "discarded"
)

// Recorder defines observability hooks for generation metrics. Implementations
// may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	IncSubmission(result SubmitLabel)
	IncGenerationOutcome(outcome OutcomeLabel)
	ObserveGenerationDuration(outcome OutcomeLabel, d time.Duration)
	SetInFlight(inFlight bool)
	IncCopyResult(success bool)
	IncExportResult(success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncSubmission(SubmitLabel)                             {}
func (NoopRecorder) IncGenerationOutcome(OutcomeLabel)                     {}
func (NoopRecorder) ObserveGenerationDuration(OutcomeLabel, time.Duration) {}
func (NoopRecorder) SetInFlight(bool)                                      {}
func (NoopRecorder) IncCopyResult(bool)                                    {}
func (NoopRecorder) IncExportResult(bool)                                  {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
