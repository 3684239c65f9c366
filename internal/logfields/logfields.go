package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyAttemptID  = "attempt_id"
	KeyPhase      = "phase"
	KeyRepo       = "repository"
	KeyEndpoint   = "endpoint"
	KeyStatus     = "status"
	KeyDurationMS = "duration_ms"
	KeyElapsed    = "elapsed_seconds"
	KeyCopyStatus = "copy_status"
	KeyPath       = "path"
	KeyBytes      = "bytes"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func AttemptID(id string) slog.Attr   { return slog.String(KeyAttemptID, id) }
func Phase(p string) slog.Attr        { return slog.String(KeyPhase, p) }
func Repository(r string) slog.Attr   { return slog.String(KeyRepo, r) }
func Endpoint(u string) slog.Attr     { return slog.String(KeyEndpoint, u) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Elapsed(seconds int) slog.Attr   { return slog.Int(KeyElapsed, seconds) }
func CopyStatus(s string) slog.Attr   { return slog.String(KeyCopyStatus, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Duration records d in milliseconds under KeyDurationMS.
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d) / float64(time.Millisecond))
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
