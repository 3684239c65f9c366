// Package errors provides the classified error primitives used across readmegen.
//
// Every failure that can reach a user carries a category and a single readable
// sentence (Message). Diagnostic detail stays in the wrapped cause so it can be
// logged without being shown.
//
// Categories follow the failure taxonomy of the generation flow:
//   - CategoryValidation: pre-submission input problems, scoped to the input form
//   - CategoryNetwork: transport failures (unreachable, timeout, malformed response)
//   - CategoryService: the README service answered with a non-success status
//   - CategoryCapability: clipboard or export primitives failed
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryNetwork, "Unexpected error, try again later.").
//		WithContext("endpoint", endpoint).
//		Build()
package errors
