package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "flood_risk"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// assessment pipeline.
type Metrics struct {
	DatasetsProcessed prometheus.Counter
	DatasetsFailed    prometheus.Counter
	HoursIngested     prometheus.Counter
	CellsRepaired     prometheus.Counter
	DaysByState       *prometheus.CounterVec // labels: risk_state={Stable,Straining,Failure}
	PipelineRunning   prometheus.Gauge

	AssessmentDuration prometheus.Histogram
	SinkErrors         *prometheus.CounterVec // labels: sink={artifacts,kafka}

	// registry is the gatherer pushed to a Pushgateway.
	registry *prometheus.Registry
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_processed_total",
			Help:      "Datasets assessed successfully.",
		}),
		DatasetsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_failed_total",
			Help:      "Datasets that failed to load, assess or publish.",
		}),
		HoursIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hours_ingested_total",
			Help:      "Hourly observations fed into assessments.",
		}),
		CellsRepaired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_repaired_total",
			Help:      "Missing or non-numeric input cells filled by the loader.",
		}),
		DaysByState: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_total",
			Help:      "Assessed days by risk state.",
		}, []string{"risk_state"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a batch is being processed, 0 otherwise.",
		}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assessment_duration_seconds",
			Help:      "Duration of one dataset's extract-assess-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed writes by sink.",
		}, []string{"sink"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.DatasetsProcessed,
		m.DatasetsFailed,
		m.HoursIngested,
		m.CellsRepaired,
		m.DaysByState,
		m.PipelineRunning,
		m.AssessmentDuration,
		m.SinkErrors,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry so /metrics exposes them.
func NewMetrics() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(m.collectors()...)
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewBatchMetrics creates Metrics registered only with their own registry.
// Batch runs push that registry to a Pushgateway and never serve /metrics.
func NewBatchMetrics() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewBatchMetrics()
}

// Registry returns the registry holding only the pipeline metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Push sends the pipeline metrics to a Prometheus Pushgateway under job. Batch
// runs exit before a scrape could happen, so they push instead.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
