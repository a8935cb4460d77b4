package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/ingest"
	"github.com/couchcryptid/flood-risk-etl/internal/observability"
	"github.com/couchcryptid/flood-risk-etl/internal/report"
)

// Extractor supplies the hourly series of one dataset.
type Extractor interface {
	Name() string
	Extract(ctx context.Context) (domain.Series, *ingest.Stats, error)
}

// Assessor turns an hourly series into a classified assessment.
type Assessor interface {
	Assess(ctx context.Context, s domain.Series) (domain.Assessment, error)
}

// Loader writes a finished assessment to a destination.
type Loader interface {
	Name() string
	Load(ctx context.Context, doc report.Document, a domain.Assessment) error
}

// Result is the outcome of one dataset.
type Result struct {
	Dataset    string
	Document   report.Document
	Assessment domain.Assessment
	Duration   time.Duration
	Err        error
}

// BatchResult collects the outcomes of a batch run in input order.
type BatchResult struct {
	RunID   string
	Results []Result
}

// Failed returns the number of datasets that did not complete.
func (b BatchResult) Failed() int {
	n := 0
	for _, r := range b.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Err joins the per-dataset errors, or returns nil when all succeeded.
func (b BatchResult) Err() error {
	var errs []error
	for _, r := range b.Results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Dataset, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Pipeline orchestrates extract, assess and load for one or many datasets.
type Pipeline struct {
	assessor Assessor
	loaders  []Loader
	logger   *slog.Logger
	metrics  *observability.Metrics
	workers  int
	ready    atomic.Bool
}

// New creates a Pipeline. workers bounds how many datasets a batch processes
// concurrently; values below 1 are treated as 1.
func New(a Assessor, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics, workers int) *Pipeline {
	return &Pipeline{
		assessor: a,
		loaders:  loaders,
		logger:   logger,
		metrics:  metrics,
		workers:  max(workers, 1),
	}
}

// CheckReadiness returns nil once the pipeline has assessed at least one
// dataset, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not assessed any dataset yet")
	}
	return nil
}

// Warmup assesses src without loading the result, proving the calibration
// works end to end before traffic is accepted.
func (p *Pipeline) Warmup(ctx context.Context, src Extractor) error {
	series, _, err := src.Extract(ctx)
	if err != nil {
		return fmt.Errorf("warmup extract: %w", err)
	}
	if _, err := p.assessor.Assess(ctx, series); err != nil {
		return fmt.Errorf("warmup assess: %w", err)
	}
	p.ready.Store(true)
	p.logger.Info("pipeline warm", "dataset", src.Name(), "hours", len(series.Hours))
	return nil
}

// Run processes every source with at most workers running at once. A failing
// dataset is logged and recorded in its Result; the others continue.
func (p *Pipeline) Run(ctx context.Context, runID string, sources []Extractor) BatchResult {
	p.logger.Info("batch started", "run_id", runID, "datasets", len(sources), "workers", p.workers)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	results := make([]Result, len(sources))
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, src := range sources {
		g.Go(func() error {
			results[i] = p.Process(ctx, runID, src)
			return nil
		})
	}
	_ = g.Wait()

	batch := BatchResult{RunID: runID, Results: results}
	p.logger.Info("batch finished", "run_id", runID, "datasets", len(sources), "failed", batch.Failed())
	return batch
}

// Process runs one dataset through extract, assess and every loader.
func (p *Pipeline) Process(ctx context.Context, runID string, src Extractor) Result {
	start := time.Now()
	log := p.logger.With("dataset", src.Name(), "run_id", runID)
	res := Result{Dataset: src.Name()}

	fail := func(stage string, err error) Result {
		res.Err = fmt.Errorf("%s: %w", stage, err)
		res.Duration = time.Since(start)
		p.metrics.DatasetsFailed.Inc()
		log.Error("dataset failed", "stage", stage, "error", err)
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail("extract", err)
	}
	series, stats, err := src.Extract(ctx)
	if err != nil {
		return fail("extract", err)
	}
	p.metrics.HoursIngested.Add(float64(len(series.Hours)))
	if stats != nil {
		p.metrics.CellsRepaired.Add(float64(stats.Repaired))
	}

	a, err := p.assessor.Assess(ctx, series)
	if err != nil {
		return fail("assess", err)
	}
	res.Assessment = a
	res.Document = report.NewDocument(runID, a, stats)

	for _, l := range p.loaders {
		if err := l.Load(ctx, res.Document, a); err != nil {
			p.metrics.SinkErrors.WithLabelValues(l.Name()).Inc()
			return fail("load "+l.Name(), err)
		}
	}

	for state, n := range a.StateCounts() {
		p.metrics.DaysByState.WithLabelValues(state.String()).Add(float64(n))
	}
	res.Duration = time.Since(start)
	p.metrics.DatasetsProcessed.Inc()
	p.metrics.AssessmentDuration.Observe(res.Duration.Seconds())
	p.ready.Store(true)

	log.Info("dataset assessed",
		"hours", len(a.Hours),
		"days", len(a.Days),
		"stable", res.Document.StateCounts[domain.Stable.String()],
		"straining", res.Document.StateCounts[domain.Straining.String()],
		"failure", res.Document.StateCounts[domain.Failure.String()],
		"duration", res.Duration,
	)
	return res
}
