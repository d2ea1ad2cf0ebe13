package service

import (
	"context"

	"despesas/internal/model"
	"despesas/internal/repository"
)

// Operations is the use-case surface of the ops API.
type Operations interface {
	// Ping checks the store.
	Ping(ctx context.Context) error

	// StoredCount returns the number of stored rows for a period of the configured municipality.
	StoredCount(ctx context.Context, year, month int) (int, error)

	// Reconcile checks and, if flagged, backfills one period. It returns ErrBusy
	// when another job is running.
	Reconcile(ctx context.Context, year, month int) (ReconcileResult, error)
}

type operations struct {
	municipality string
	repo         repository.ExpenseRepository
	reconciler   *Reconciler
	guard        *Guard
}

// NewOperations constructs Operations for one municipality. guard is shared
// with any other job runner in the process.
func NewOperations(municipality string, repo repository.ExpenseRepository, reconciler *Reconciler, guard *Guard) Operations {
	if guard == nil {
		guard = &Guard{}
	}
	return &operations{municipality: municipality, repo: repo, reconciler: reconciler, guard: guard}
}

func (o *operations) Ping(ctx context.Context) error {
	return o.repo.Ping(ctx)
}

func (o *operations) StoredCount(ctx context.Context, year, month int) (int, error) {
	return o.repo.CountByPeriod(ctx, year, month)
}

func (o *operations) Reconcile(ctx context.Context, year, month int) (ReconcileResult, error) {
	var out ReconcileResult
	err := o.guard.Do(func() error {
		out = o.reconciler.ReconcilePeriod(ctx, model.Period{Municipality: o.municipality, Year: year, Month: month})
		return nil
	})
	return out, err
}
