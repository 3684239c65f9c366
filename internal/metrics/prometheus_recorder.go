package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
)

const namespace = "readmegen"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once               sync.Once
	reg                *prom.Registry
	submissions        *prom.CounterVec
	outcomes           *prom.CounterVec
	generationDuration *prom.HistogramVec
	inFlight           prom.Gauge
	copyResults        *prom.CounterVec
	exportResults      *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.submissions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submit requests by handling result",
		}, []string{"result"})
		pr.outcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "generation_outcomes_total",
			Help:      "Generation attempts by final outcome",
		}, []string{"outcome"})
		pr.generationDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Wall-clock duration of generation attempts",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		}, []string{"outcome"})
		pr.inFlight = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "generation_in_flight",
			Help:      "1 while a generation request is outstanding",
		})
		pr.copyResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "copy_results_total",
			Help:      "Clipboard copy results by success/failure",
		}, []string{"result"})
		pr.exportResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "export_results_total",
			Help:      "README export results by success/failure",
		}, []string{"result"})
		reg.MustRegister(pr.submissions, pr.outcomes, pr.generationDuration, pr.inFlight, pr.copyResults, pr.exportResults)
	})
	return pr
}

// Registry returns the registry the recorder's collectors live in.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

func (p *PrometheusRecorder) IncSubmission(result SubmitLabel) {
	if p == nil || p.submissions == nil {
		return
	}
	p.submissions.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncGenerationOutcome(outcome OutcomeLabel) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveGenerationDuration(outcome OutcomeLabel, d time.Duration) {
	if p == nil || p.generationDuration == nil {
		return
	}
	p.generationDuration.WithLabelValues(string(outcome)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetInFlight(inFlight bool) {
	if p == nil || p.inFlight == nil {
		return
	}
	if inFlight {
		p.inFlight.Set(1)
		return
	}
	p.inFlight.Set(0)
}

func (p *PrometheusRecorder) IncCopyResult(success bool) {
	if p == nil || p.copyResults == nil {
		return
	}
	p.copyResults.WithLabelValues(resultLabel(success)).Inc()
}

func (p *PrometheusRecorder) IncExportResult(success bool) {
	if p == nil || p.exportResults == nil {
		return
	}
	p.exportResults.WithLabelValues(resultLabel(success)).Inc()
}

// WriteTextfile writes the current metric values to path in the text
// exposition format. The write is atomic.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if p == nil || p.reg == nil {
		return nil
	}
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write metrics textfile").
			WithContext("path", path).
			Build()
	}
	return nil
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}
