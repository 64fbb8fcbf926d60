package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockanalysis"

// Recorder collects engine metrics on its own registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	analyzerFaults   *prometheus.CounterVec
	analyzerOutcomes *prometheus.CounterVec
	analyses         *prometheus.CounterVec
	lastScore        *prometheus.GaugeVec
	fetchErrors      *prometheus.CounterVec
	fetchLatency     *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		analyzerFaults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyzer_faults_total",
				Help:      "Analyzer invocations that failed or panicked and were folded into absent",
			},
			[]string{"component"},
		),
		analyzerOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyzer_outcomes_total",
				Help:      "Analyzer results by outcome (scored, no_opinion, absent)",
			},
			[]string{"component", "outcome"},
		),
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Completed analyses by recommendation",
			},
			[]string{"recommendation"},
		),
		lastScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_composite_score",
				Help:      "Most recent composite score per ticker",
			},
			[]string{"ticker"},
		),
		fetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_errors_total",
				Help:      "Market data fetch failures by provider",
			},
			[]string{"provider", "kind"},
		),
		fetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Market data fetch latency by provider",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_cache_lookups_total",
				Help:      "Snapshot cache lookups by result (hit, miss, error)",
			},
			[]string{"result"},
		),
	}
}

// RecordAnalyzerFault counts an analyzer error or panic.
func (r *Recorder) RecordAnalyzerFault(component string) {
	if r == nil {
		return
	}
	r.analyzerFaults.WithLabelValues(component).Inc()
}

// RecordAnalyzerOutcome counts one analyzer result.
func (r *Recorder) RecordAnalyzerOutcome(component, outcome string) {
	if r == nil {
		return
	}
	r.analyzerOutcomes.WithLabelValues(component, outcome).Inc()
}

// RecordAnalysis counts a finished signal and tracks its score.
func (r *Recorder) RecordAnalysis(ticker, recommendation string, score float64) {
	if r == nil {
		return
	}
	r.analyses.WithLabelValues(recommendation).Inc()
	r.lastScore.WithLabelValues(ticker).Set(score)
}

// RecordFetch records a provider call's latency and, if it failed, its error kind.
func (r *Recorder) RecordFetch(provider string, took time.Duration, errKind string) {
	if r == nil {
		return
	}
	r.fetchLatency.WithLabelValues(provider).Observe(took.Seconds())
	if errKind != "" {
		r.fetchErrors.WithLabelValues(provider, errKind).Inc()
	}
}

// RecordCacheLookup counts a snapshot cache hit, miss or error.
func (r *Recorder) RecordCacheLookup(result string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry (tests, custom exporters).
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
