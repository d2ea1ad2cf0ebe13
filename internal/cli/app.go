package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"despesas/internal/config"
	"despesas/internal/database"
	"despesas/internal/events"
	"despesas/internal/metrics"
	"despesas/internal/otel"
	"despesas/internal/repository"
	"despesas/internal/repository/postgres"
	"despesas/internal/service"
	"despesas/internal/storage"
	"despesas/internal/upstream"
)

// app holds the wired components of one command invocation.
type app struct {
	cfg      *config.AppConfig
	log      zerolog.Logger
	db       *sql.DB
	repo     repository.ExpenseRepository
	registry *prometheus.Registry
	metrics  *metrics.Pipeline

	fetcher       *upstream.CachingFetcher
	ingestor      *service.Ingestor
	reconciler    *service.Reconciler
	recategorizer *service.Recategorizer
	publisher     events.Publisher
	guard         *service.Guard

	closers []func(context.Context) error
}

// newApp connects the store and builds every component. Failing to reach the
// store is fatal and reported as service.ErrStoreUnavailable.
func newApp(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, guard: &service.Guard{}}

	shutdown, err := otel.Init(ctx, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdown)

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("%w: %v", service.ErrStoreUnavailable, err)
	}
	a.db = db
	a.closers = append(a.closers, func(context.Context) error { return db.Close() })
	a.repo = postgres.NewExpensePostgres(db)
	if err := service.CheckStore(ctx, a.repo); err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if a.metrics, err = metrics.NewPipeline(a.registry); err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.fetcher = upstream.NewCachingFetcher(upstream.NewClient(cfg.Upstream, nil), cfg.Upstream.CacheTTL)

	opts := []service.IngestorOption{service.WithMetrics(a.metrics)}

	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			log.Warn().Err(err).Msg("raw archive disabled")
		} else {
			opts = append(opts, service.WithArchive(storage.NewArchive(store)))
		}
	}

	a.publisher = events.Nop{}
	if cfg.AMQP.URL != "" {
		pub, err := events.NewAMQPPublisher(cfg.AMQP)
		if err != nil {
			log.Warn().Err(err).Msg("period events disabled")
		} else {
			a.publisher = pub
			a.closers = append(a.closers, func(context.Context) error { return pub.Close() })
		}
	}
	opts = append(opts, service.WithPublisher(a.publisher))

	writer := service.NewWriter(a.repo, cfg.Pipeline.BatchSize, a.metrics)
	a.ingestor = service.NewIngestor(cfg.Pipeline, a.fetcher, writer, opts...)
	a.reconciler = service.NewReconciler(a.fetcher, a.repo, a.ingestor, cfg.Pipeline.CriticalMonths, a.metrics)
	a.recategorizer = service.NewRecategorizer(a.repo, cfg.Pipeline.BatchSize, a.metrics)

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
