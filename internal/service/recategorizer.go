package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"despesas/internal/classifier"
	"despesas/internal/logger"
	"despesas/internal/metrics"
	"despesas/internal/model"
	"despesas/internal/repository"
)

// RecategorizeReport is the outcome of one recategorization pass.
type RecategorizeReport struct {
	Scanned       int
	Recategorized int
	FailedBatches int
	ByCategory    map[string]int
}

// Recategorizer re-runs the classifier over rows stuck in the fallback category
// and writes back only the category of rows that now match a rule.
type Recategorizer struct {
	repo      repository.ExpenseRepository
	batchSize int
	metrics   *metrics.Pipeline
}

// NewRecategorizer creates a Recategorizer. A non-positive batchSize uses DefaultBatchSize.
func NewRecategorizer(repo repository.ExpenseRepository, batchSize int, m *metrics.Pipeline) *Recategorizer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if m == nil {
		m = metrics.Discard()
	}
	return &Recategorizer{repo: repo, batchSize: batchSize, metrics: m}
}

// Run scans every Geral row. Organ is not stored, so rows are classified on
// supplier and description only.
func (r *Recategorizer) Run(ctx context.Context) (RecategorizeReport, error) {
	log := logger.Component(ctx, "recategorizer")
	rep := RecategorizeReport{ByCategory: map[string]int{}}

	candidates, err := r.repo.ListByCategory(ctx, classifier.Geral)
	if err != nil {
		return rep, fmt.Errorf("list %s rows: %w", classifier.Geral, err)
	}
	rep.Scanned = len(candidates)

	var updates []model.CategoryUpdate
	for _, c := range candidates {
		category := classifier.Classify("", c.SupplierName, c.Description)
		if category == classifier.Geral {
			continue
		}
		updates = append(updates, model.CategoryUpdate{ID: c.ID, Category: category})
	}

	for start := 0; start < len(updates); start += r.batchSize {
		end := min(start+r.batchSize, len(updates))
		batch := updates[start:end]
		if err := r.repo.UpdateCategories(ctx, batch); err != nil {
			rep.FailedBatches++
			log.Error().Err(fmt.Errorf("%w: %v", ErrWriteFailure, err)).Int("records", len(batch)).Msg("category batch failed")
			continue
		}
		for _, u := range batch {
			rep.ByCategory[u.Category]++
		}
		rep.Recategorized += len(batch)
		r.metrics.Recategorized.Add(float64(len(batch)))
		log.Info().Int("records", len(batch)).Int("recategorized_total", rep.Recategorized).Msg("category batch written")
	}

	log.Info().Int("scanned", rep.Scanned).Int("recategorized", rep.Recategorized).Msg("recategorization finished")
	return rep, nil
}

// Summary converts the report into a run summary.
func (r RecategorizeReport) Summary() Summary {
	return Summary{RunID: uuid.NewString(), Scanned: r.Scanned, Recategorized: r.Recategorized}
}
