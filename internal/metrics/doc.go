// Package metrics provides observability hooks for README generation.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	s := session.New(gen, session.WithRecorder(metrics.NoopRecorder{}))
//
// When metrics.textfile is configured the CLI swaps in a PrometheusRecorder
// backed by its own registry and flushes it with WriteTextfile on exit, in the
// node_exporter textfile collector format.
package metrics
