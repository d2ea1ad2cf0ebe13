package repository

import (
	"context"

	"despesas/internal/model"
)

// ExpenseRepository defines data access for the expenses table.
// No business logic here, strictly persistence operations.
type ExpenseRepository interface {
	// UpsertBatch inserts or updates every expense keyed by document number in one
	// statement. Document numbers within the batch must be unique. Existing rows
	// keep their id.
	UpsertBatch(ctx context.Context, batch []model.Expense) error

	// CountByPeriod returns the number of stored rows for (year, month).
	CountByPeriod(ctx context.Context, year, month int) (int, error)

	// CountByCategory returns the number of stored rows carrying category.
	CountByCategory(ctx context.Context, category string) (int, error)

	// ListByCategory returns the recategorization projection of rows carrying category.
	ListByCategory(ctx context.Context, category string) ([]model.CategoryCandidate, error)

	// UpdateCategories writes only the category column of the given rows.
	UpdateCategories(ctx context.Context, updates []model.CategoryUpdate) error

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}
