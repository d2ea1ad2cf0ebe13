package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"despesas/internal/config"
	"despesas/internal/events"
	"despesas/internal/logger"
	"despesas/internal/metrics"
	"despesas/internal/model"
	"despesas/internal/storage"
	"despesas/internal/upstream"
)

// Ingestor drives periods through fetch, normalize, classify and write.
type Ingestor struct {
	fetcher   upstream.Fetcher
	writer    *Writer
	archive   *storage.Archive
	publisher events.Publisher
	metrics   *metrics.Pipeline
	tracer    trace.Tracer
	current   string
	now       func() time.Time
}

// IngestorOption configures optional collaborators.
type IngestorOption func(*Ingestor)

// WithArchive stores every non-empty payload.
func WithArchive(a *storage.Archive) IngestorOption {
	return func(i *Ingestor) { i.archive = a }
}

// WithPublisher announces terminal period states.
func WithPublisher(p events.Publisher) IngestorOption {
	return func(i *Ingestor) { i.publisher = p }
}

// WithMetrics sets the collectors to update.
func WithMetrics(m *metrics.Pipeline) IngestorOption {
	return func(i *Ingestor) { i.metrics = m }
}

// WithClock overrides the wall clock used when no current period is configured.
func WithClock(now func() time.Time) IngestorOption {
	return func(i *Ingestor) { i.now = now }
}

// NewIngestor creates an Ingestor.
func NewIngestor(cfg config.PipelineConfig, fetcher upstream.Fetcher, writer *Writer, opts ...IngestorOption) *Ingestor {
	i := &Ingestor{
		fetcher:   fetcher,
		writer:    writer,
		publisher: events.Nop{},
		metrics:   metrics.Discard(),
		tracer:    otel.Tracer("despesas/service"),
		current:   cfg.CurrentPeriod,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Current returns the run's logical current year and month.
func (i *Ingestor) Current() (int, int) {
	if i.current != "" {
		if y, m, err := config.ParseYearMonth(i.current); err == nil {
			return y, m
		}
	}
	t := i.now()
	return t.Year(), int(t.Month())
}

// Run ingests periods in year then month order and returns the run summary.
// Cancellation takes effect between periods.
func (i *Ingestor) Run(ctx context.Context, periods []model.Period) Summary {
	log := logger.Component(ctx, "ingestor")
	sum := Summary{RunID: uuid.NewString()}

	ordered := append([]model.Period(nil), periods...)
	sort.SliceStable(ordered, func(a, b int) bool { return ordered[a].Before(ordered[b]) })

	for _, p := range ordered {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Str("period", p.String()).Msg("run cancelled")
			break
		}
		sum.Add(i.ingest(context.WithoutCancel(ctx), sum.RunID, p))
	}

	sum.Log(log, "ingestion finished")
	return sum
}

// IngestPeriod runs the single-period path used by backfills and the ops API.
func (i *Ingestor) IngestPeriod(ctx context.Context, p model.Period) PeriodResult {
	return i.ingest(context.WithoutCancel(ctx), uuid.NewString(), p)
}

func (i *Ingestor) ingest(ctx context.Context, runID string, p model.Period) PeriodResult {
	log := logger.Component(ctx, "ingestor").With().Str("period", p.String()).Logger()
	res := PeriodResult{Period: p, State: model.StatePending}

	y, m := i.Current()
	if p.After(y, m) {
		res.State = model.StateSkipped
		i.metrics.Periods.WithLabelValues(string(res.State)).Inc()
		log.Info().Str("state", string(res.State)).Msg("period is in the future")
		return res
	}

	ctx, span := i.tracer.Start(ctx, "ingest.period", trace.WithAttributes(
		attribute.String("municipality", p.Municipality),
		attribute.Int("year", p.Year),
		attribute.Int("month", p.Month),
	))
	defer func() {
		span.SetAttributes(
			attribute.String("state", string(res.State)),
			attribute.Int("written", res.Written),
			attribute.Int("skipped", res.Skipped),
		)
		span.End()
		i.finish(ctx, runID, res)
	}()

	start := time.Now()
	fetched, err := i.fetcher.Fetch(ctx, p)
	i.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		res.State = model.StateFetchFailed
		res.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		log.Warn().Err(err).Msg("fetch failed, period skipped")
		return res
	}
	if fetched.Empty() {
		res.State = model.StateEmpty
		log.Info().Msg("no data for period")
		return res
	}
	res.State = model.StateFetched

	if i.archive != nil {
		if _, err := i.archive.Save(ctx, p, fetched.URL, fetched.Body, len(fetched.Records)); err != nil {
			log.Warn().Err(err).Msg("raw payload not archived")
		}
	}

	prep := prepare(p, fetched)
	for _, d := range prep.Dropped {
		i.metrics.RecordsSkipped.WithLabelValues(d.Reason).Inc()
		log.Warn().Err(d.Err).Str("document_number", d.DocumentNumber).Str("reason", d.Reason).Msg("record dropped")
	}
	res.Upstream = prep.Distinct
	res.Skipped = len(prep.Dropped)
	res.State = model.StateNormalized

	rep := i.writer.Write(ctx, prep.Expenses)
	res.State = model.StateWritten
	res.Written = rep.Written
	res.Skipped += rep.Failed
	res.FailedBatches = rep.FailedBatches
	if len(rep.Errors) > 0 {
		res.Err = rep.Errors[0]
	}

	res.State = model.StateDone
	log.Info().
		Int("records", len(fetched.Records)).
		Int("written", res.Written).
		Int("skipped", res.Skipped).
		Int("failed_batches", res.FailedBatches).
		Msg("period ingested")
	return res
}

func (i *Ingestor) finish(ctx context.Context, runID string, res PeriodResult) {
	i.metrics.Periods.WithLabelValues(string(res.State)).Inc()
	e := events.NewPeriodEvent(runID, res.Period, res.State, res.Written, res.Skipped)
	if err := i.publisher.Publish(ctx, e); err != nil {
		log := logger.Component(ctx, "ingestor")
		log.Warn().Err(err).Str("period", res.Period.String()).Msg("period event not published")
	}
}
