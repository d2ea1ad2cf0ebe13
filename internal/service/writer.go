package service

import (
	"context"
	"fmt"

	"despesas/internal/logger"
	"despesas/internal/metrics"
	"despesas/internal/model"
	"despesas/internal/repository"
)

// DefaultBatchSize is the number of records per upsert statement.
const DefaultBatchSize = 100

// WriteReport describes the outcome of one Write call.
type WriteReport struct {
	Written       int
	Failed        int
	Duplicates    int
	Batches       int
	FailedBatches int
	Errors        []error
}

// Writer persists normalized expenses in fixed-size batches keyed by document number.
type Writer struct {
	repo      repository.ExpenseRepository
	batchSize int
	metrics   *metrics.Pipeline
}

// NewWriter creates a Writer. A non-positive batchSize uses DefaultBatchSize.
func NewWriter(repo repository.ExpenseRepository, batchSize int, m *metrics.Pipeline) *Writer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if m == nil {
		m = metrics.Discard()
	}
	return &Writer{repo: repo, batchSize: batchSize, metrics: m}
}

// Write upserts records batch by batch. A failed batch is logged and counted;
// later batches still run. Repeated document numbers collapse to the last one.
func (w *Writer) Write(ctx context.Context, records []model.Expense) WriteReport {
	log := logger.Component(ctx, "writer")

	unique := dedupe(records)
	rep := WriteReport{Duplicates: len(records) - len(unique)}
	if rep.Duplicates > 0 {
		w.metrics.RecordsSkipped.WithLabelValues(metrics.ReasonDuplicate).Add(float64(rep.Duplicates))
		log.Warn().Int("duplicates", rep.Duplicates).Msg("repeated document numbers collapsed")
	}

	for start := 0; start < len(unique); start += w.batchSize {
		end := min(start+w.batchSize, len(unique))
		batch := unique[start:end]
		rep.Batches++

		if err := w.repo.UpsertBatch(ctx, batch); err != nil {
			err = fmt.Errorf("%w: batch %d (%d records): %v", ErrWriteFailure, rep.Batches, len(batch), err)
			rep.Failed += len(batch)
			rep.FailedBatches++
			rep.Errors = append(rep.Errors, err)
			w.metrics.BatchFailures.Inc()
			w.metrics.RecordsSkipped.WithLabelValues(metrics.ReasonWriteFailure).Add(float64(len(batch)))
			log.Error().Err(err).Int("batch", rep.Batches).Msg("batch failed")
			continue
		}

		rep.Written += len(batch)
		w.metrics.RecordsWritten.Add(float64(len(batch)))
		log.Info().Int("batch", rep.Batches).Int("records", len(batch)).Int("written_total", rep.Written).Msg("batch written")
	}
	return rep
}

// dedupe keeps the first position of each document number and the last value.
func dedupe(records []model.Expense) []model.Expense {
	index := make(map[string]int, len(records))
	out := make([]model.Expense, 0, len(records))
	for _, r := range records {
		if i, ok := index[r.DocumentNumber]; ok {
			out[i] = r
			continue
		}
		index[r.DocumentNumber] = len(out)
		out = append(out, r)
	}
	return out
}
