package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"despesas/internal/logger"
	"despesas/internal/metrics"
	"despesas/internal/model"
	"despesas/internal/repository"
	"despesas/internal/upstream"
)

// Flag reasons.
const (
	FlagCountMismatch   = "count_mismatch"
	FlagMissingCritical = "missing_critical"
)

// Check is the verdict of the reconciler for one period.
type Check struct {
	Period model.Period
	// Upstream is -1 when the upstream could not be counted.
	Upstream int
	Stored   int
	Flags    []string
	Err      error
}

// Flagged reports whether the period needs a backfill.
func (c Check) Flagged() bool { return len(c.Flags) > 0 }

// ReconcileResult is a check plus the backfill it triggered.
type ReconcileResult struct {
	Check
	Backfill    *PeriodResult
	StoredAfter int
}

// Converged reports whether the stored count matches upstream after the backfill.
func (r ReconcileResult) Converged() bool {
	return r.Upstream >= 0 && r.StoredAfter == r.Upstream
}

// Reconciler compares stored counts against upstream and backfills flagged periods
// through the Ingestor's single-period path.
type Reconciler struct {
	fetcher  upstream.Fetcher
	repo     repository.ExpenseRepository
	ingestor *Ingestor
	critical map[int]bool
	metrics  *metrics.Pipeline
}

// NewReconciler creates a Reconciler. criticalMonths are checked for presence.
func NewReconciler(fetcher upstream.Fetcher, repo repository.ExpenseRepository, ingestor *Ingestor, criticalMonths []int, m *metrics.Pipeline) *Reconciler {
	crit := make(map[int]bool, len(criticalMonths))
	for _, month := range criticalMonths {
		crit[month] = true
	}
	if m == nil {
		m = metrics.Discard()
	}
	return &Reconciler{fetcher: fetcher, repo: repo, ingestor: ingestor, critical: crit, metrics: m}
}

// Check runs the count check and, for critical months, the presence check.
func (r *Reconciler) Check(ctx context.Context, p model.Period) Check {
	log := logger.Component(ctx, "reconciler").With().Str("period", p.String()).Logger()
	c := Check{Period: p, Upstream: -1}

	stored, err := r.repo.CountByPeriod(ctx, p.Year, p.Month)
	if err != nil {
		c.Err = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		log.Error().Err(err).Msg("stored count unavailable")
		return c
	}
	c.Stored = stored

	res, err := r.fetcher.Fetch(ctx, p)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("upstream count unavailable")
	case res.Empty():
		c.Upstream = 0
	default:
		c.Upstream = prepare(p, res).Distinct
	}

	if c.Upstream >= 0 && c.Upstream != c.Stored {
		c.Flags = append(c.Flags, FlagCountMismatch)
		c.Err = fmt.Errorf("%w: %s upstream=%d stored=%d", ErrCountMismatch, p, c.Upstream, c.Stored)
	}
	if r.critical[p.Month] && c.Stored == 0 {
		c.Flags = append(c.Flags, FlagMissingCritical)
	}

	log.Info().Int("upstream", c.Upstream).Int("stored", c.Stored).Strs("flags", c.Flags).Msg("period checked")
	return c
}

// ReconcilePeriod checks p and backfills it when flagged.
func (r *Reconciler) ReconcilePeriod(ctx context.Context, p model.Period) ReconcileResult {
	log := logger.Component(ctx, "reconciler").With().Str("period", p.String()).Logger()

	if y, m := r.ingestor.Current(); p.After(y, m) {
		log.Info().Msg("period is in the future")
		return ReconcileResult{Check: Check{Period: p, Upstream: -1}}
	}

	if f, ok := r.fetcher.(upstream.Forgetter); ok {
		defer f.Forget(p)
	}

	out := ReconcileResult{Check: r.Check(ctx, p)}
	out.StoredAfter = out.Stored
	if !out.Flagged() {
		return out
	}

	r.metrics.Mismatches.Inc()
	log.Warn().Strs("flags", out.Flags).Msg("period flagged, backfilling")

	bf := r.ingestor.IngestPeriod(ctx, p)
	out.Backfill = &bf

	if after, err := r.repo.CountByPeriod(ctx, p.Year, p.Month); err == nil {
		out.StoredAfter = after
	}
	log.Info().
		Str("state", string(bf.State)).
		Int("written", bf.Written).
		Int("stored_after", out.StoredAfter).
		Bool("converged", out.Converged()).
		Msg("backfill finished")
	return out
}

// Run reconciles every period in order and returns the run summary.
func (r *Reconciler) Run(ctx context.Context, periods []model.Period) (Summary, []ReconcileResult) {
	log := logger.Component(ctx, "reconciler")
	sum := Summary{RunID: uuid.NewString()}
	results := make([]ReconcileResult, 0, len(periods))

	ordered := append([]model.Period(nil), periods...)
	sort.SliceStable(ordered, func(a, b int) bool { return ordered[a].Before(ordered[b]) })

	for _, p := range ordered {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Msg("reconcile cancelled")
			break
		}
		res := r.ReconcilePeriod(ctx, p)
		results = append(results, res)
		if res.Flagged() {
			sum.Mismatches++
		}
		if res.Backfill != nil {
			sum.Add(*res.Backfill)
		}
	}

	sum.Log(log, "reconcile finished")
	return sum, results
}
