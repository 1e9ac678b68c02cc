package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/covid-br-dashboard/internal/domain"
	"github.com/couchcryptid/covid-br-dashboard/internal/observability"
)

// Fetcher returns the latest raw per-state records from the upstream source.
type Fetcher interface {
	FetchLatest(ctx context.Context) ([]domain.RawRecord, error)
}

// Publisher hands a finished report to a downstream sink.
type Publisher interface {
	Publish(ctx context.Context, report domain.Report) error
}

// Pipeline runs fetch, normalize, derive and rank once per call.
// It holds no snapshot between runs.
type Pipeline struct {
	fetcher   Fetcher
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	topN      int
	ready     atomic.Bool
}

// New creates a Pipeline. A nil publisher disables publishing; topN <= 0
// falls back to domain.DefaultTopN.
func New(f Fetcher, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, topN int) *Pipeline {
	if topN <= 0 {
		topN = domain.DefaultTopN
	}
	return &Pipeline{
		fetcher:   f,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
		topN:      topN,
	}
}

// CheckReadiness returns nil once at least one run has succeeded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a successful run yet")
	}
	return nil
}

// Run executes one pass and returns the report. Stage errors are wrapped
// with the stage name; the typed domain errors stay reachable with errors.As.
func (p *Pipeline) Run(ctx context.Context) (domain.Report, error) {
	start := time.Now()

	report, err := p.run(ctx)
	p.metrics.PipelineRunDuration.Observe(time.Since(start).Seconds())
	p.metrics.PipelineRuns.WithLabelValues(Outcome(err)).Inc()

	if err != nil {
		p.logger.Error("pipeline run failed", "error", err, "outcome", Outcome(err))
		return domain.Report{}, err
	}

	p.metrics.SnapshotStates.Set(float64(report.Snapshot.Len()))
	p.ready.Store(true)
	p.logger.Info("pipeline run complete",
		"states", report.Snapshot.Len(),
		"total_confirmed", report.Aggregates.TotalConfirmed,
		"latest_report_date", report.Aggregates.LatestReportDate.Format("2006-01-02"),
		"duration", time.Since(start),
	)

	p.publish(ctx, report)
	return report, nil
}

func (p *Pipeline) run(ctx context.Context) (domain.Report, error) {
	raw, err := p.fetcher.FetchLatest(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("fetch: %w", err)
	}

	snapshot, err := domain.Normalize(raw)
	if err != nil {
		return domain.Report{}, fmt.Errorf("normalize: %w", err)
	}

	report, err := domain.NewReport(snapshot, p.topN)
	if err != nil {
		return domain.Report{}, fmt.Errorf("aggregate: %w", err)
	}
	return report, nil
}

// publish forwards the report to the optional sink. Failures are logged and
// counted; the report is still returned to the caller.
func (p *Pipeline) publish(ctx context.Context, report domain.Report) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, report); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish snapshot failed", "error", err)
		return
	}
	p.metrics.RecordsPublished.Add(float64(report.Snapshot.Len()))
}

// Outcome maps a run error onto the pipeline_runs_total outcome label.
func Outcome(err error) string {
	var (
		fetchErr  *domain.FetchError
		schemaErr *domain.SchemaError
		dateErr   *domain.DateParseError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &fetchErr):
		return "fetch_error"
	case errors.As(err, &schemaErr):
		return "schema_error"
	case errors.As(err, &dateErr):
		return "date_error"
	case errors.Is(err, domain.ErrEmptyDataset):
		return "empty"
	default:
		return "error"
	}
}
