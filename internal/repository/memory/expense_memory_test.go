package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"despesas/internal/model"
	"despesas/internal/repository"
)

func expense(doc, category string, year, month int) model.Expense {
	return model.Expense{
		Date:           "2026-01-15",
		Amount:         decimal.NewFromInt(10),
		Category:       category,
		DocumentNumber: doc,
		Year:           year,
		Month:          month,
	}
}

func TestExpenseMemory_UpsertKeepsID(t *testing.T) {
	repo := NewExpenseMemory()
	ctx := context.Background()

	require.NoError(t, repo.UpsertBatch(ctx, []model.Expense{expense("A", "Geral", 2026, 1)}))
	first, ok := repo.Get("A")
	require.True(t, ok)
	assert.NotEmpty(t, first.ID)

	updated := expense("A", "Saúde", 2026, 1)
	require.NoError(t, repo.UpsertBatch(ctx, []model.Expense{updated}))
	second, _ := repo.Get("A")

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Saúde", second.Category)
	assert.Len(t, repo.All(), 1)
}

func TestExpenseMemory_RejectsBadBatches(t *testing.T) {
	repo := NewExpenseMemory()
	ctx := context.Background()

	assert.ErrorIs(t, repo.UpsertBatch(ctx, nil), repository.ErrEmptyBatch)
	err := repo.UpsertBatch(ctx, []model.Expense{expense("A", "Geral", 2026, 1), expense("A", "Geral", 2026, 1)})
	assert.ErrorIs(t, err, ErrDuplicateInBatch)
	assert.Empty(t, repo.All())
}

func TestExpenseMemory_CountsAndCategories(t *testing.T) {
	repo := NewExpenseMemory()
	ctx := context.Background()

	require.NoError(t, repo.UpsertBatch(ctx, []model.Expense{
		expense("A", "Geral", 2026, 1),
		expense("B", "Geral", 2026, 2),
		expense("C", "Saúde", 2026, 1),
	}))

	n, _ := repo.CountByPeriod(ctx, 2026, 1)
	assert.Equal(t, 2, n)
	n, _ = repo.CountByCategory(ctx, "Geral")
	assert.Equal(t, 2, n)

	geral, err := repo.ListByCategory(ctx, "Geral")
	require.NoError(t, err)
	require.Len(t, geral, 2)

	require.NoError(t, repo.UpdateCategories(ctx, []model.CategoryUpdate{{ID: geral[0].ID, Category: "Obras"}}))
	n, _ = repo.CountByCategory(ctx, "Geral")
	assert.Equal(t, 1, n)
	n, _ = repo.CountByCategory(ctx, "Obras")
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, repo.UpdateCategories(ctx, nil), repository.ErrEmptyBatch)
	assert.NoError(t, repo.Ping(ctx))
}
