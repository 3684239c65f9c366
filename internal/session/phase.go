package session

import (
	"time"
)

// Phase is the discrete state of a Session.
type Phase int

const (
	Idle Phase = iota
	InFlight
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case InFlight:
		return "in_flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether p is Succeeded or Failed.
func (p Phase) Terminal() bool {
	return p == Succeeded || p == Failed
}

// Snapshot is an immutable copy of the session state. Document is set only in
// Succeeded and ErrorMessage only in Failed.
type Snapshot struct {
	Phase        Phase
	InputURL     string
	Document     string
	ErrorMessage string
	AttemptID    string
	StartedAt    time.Time

	// ElapsedSeconds is the whole-seconds counter shown while InFlight.
	ElapsedSeconds int
	// Duration is the exact time spent InFlight, set when the phase leaves it.
	Duration time.Duration
}

// Elapsed returns the frozen duration in seconds once the attempt finished,
// otherwise the live whole-seconds counter.
func (s Snapshot) Elapsed() float64 {
	if s.Phase.Terminal() {
		return s.Duration.Seconds()
	}
	return float64(s.ElapsedSeconds)
}
