// Package generator talks to the README generation service.
//
// One call is one POST of the repository URL; every outcome, including
// transport failures, comes back as a Result so callers never deal with
// panics or partial states. Failure messages are single user-facing
// sentences; diagnostics stay in the error chain and the log.
package generator

import (
	"context"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
)

// Generator produces a README document for a normalized repository URL.
// Implementations must return exactly one of Document or Err.
type Generator interface {
	Generate(ctx context.Context, repoURL string) Result
}

// Result is the outcome of one Generate call.
type Result struct {
	Document string
	Err      error
}

// Success builds a successful Result.
func Success(doc string) Result {
	return Result{Document: doc}
}

// Failure builds a failed Result.
func Failure(err error) Result {
	return Result{Err: err}
}

// OK reports whether the result carries a document.
func (r Result) OK() bool {
	return r.Err == nil
}

// Message returns the user-facing failure sentence, or "" on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return ferrors.UserMessage(r.Err, r.Err.Error())
}

// Func adapts a plain function to the Generator interface.
type Func func(ctx context.Context, repoURL string) Result

func (f Func) Generate(ctx context.Context, repoURL string) Result {
	return f(ctx, repoURL)
}
