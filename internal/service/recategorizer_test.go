package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"despesas/internal/classifier"
	"despesas/internal/model"
	"despesas/internal/repository/memory"
	repoMocks "despesas/internal/repository/mocks"
)

func seed(t *testing.T, repo *memory.ExpenseMemory, rows ...model.Expense) {
	t.Helper()
	require.NoError(t, repo.UpsertBatch(context.Background(), rows))
}

func geralRow(doc, supplier, description string) model.Expense {
	return model.Expense{
		Date:           "2025-01-10",
		Amount:         decimal.NewFromInt(1),
		Description:    description,
		Category:       classifier.Geral,
		SupplierName:   supplier,
		DocumentNumber: doc,
		Year:           2025,
		Month:          1,
	}
}

func TestRecategorizer_HospitalBecomesSaude(t *testing.T) {
	repo := memory.NewExpenseMemory()
	seed(t, repo,
		geralRow("A", "SANTA CASA", "Empenho: REPASSE AO HOSPITAL"),
		geralRow("B", "PAPELARIA CENTRAL", "Empenho: MATERIAL DE ESCRITORIO"),
	)
	untouched, _ := repo.Get("B")

	rep, err := NewRecategorizer(repo, 100, nil).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, rep.Scanned)
	assert.Equal(t, 1, rep.Recategorized)
	assert.Equal(t, map[string]int{classifier.Saude: 1}, rep.ByCategory)

	a, _ := repo.Get("A")
	assert.Equal(t, classifier.Saude, a.Category)
	b, _ := repo.Get("B")
	assert.Equal(t, untouched, b)

	sum := rep.Summary()
	assert.Equal(t, 2, sum.Scanned)
	assert.Equal(t, 1, sum.Recategorized)
}

func TestRecategorizer_OnlyWritesChangedRows(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockExpenseRepository)
	repo.On("ListByCategory", ctx, classifier.Geral).Return([]model.CategoryCandidate{
		{ID: "1", SupplierName: "CONSTRUTORA ABC", Description: "Empenho: Despesa registrada"},
		{ID: "2", SupplierName: "FULANO", Description: "Empenho: Despesa registrada"},
		{ID: "3", SupplierName: "", Description: "Empenho: LICENCA DE SOFTWARE"},
	}, nil)
	repo.On("UpdateCategories", ctx, []model.CategoryUpdate{
		{ID: "1", Category: classifier.Obras},
		{ID: "3", Category: classifier.Tecnologia},
	}).Return(nil).Once()

	rep, err := NewRecategorizer(repo, 100, nil).Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, rep.Scanned)
	assert.Equal(t, 2, rep.Recategorized)
	repo.AssertExpectations(t)
}

func TestRecategorizer_NothingToDo(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockExpenseRepository)
	repo.On("ListByCategory", ctx, classifier.Geral).Return([]model.CategoryCandidate{
		{ID: "1", SupplierName: "FULANO", Description: "Empenho: Despesa registrada"},
	}, nil)

	rep, err := NewRecategorizer(repo, 100, nil).Run(ctx)

	require.NoError(t, err)
	assert.Zero(t, rep.Recategorized)
	repo.AssertNotCalled(t, "UpdateCategories", mock.Anything, mock.Anything)
}

func TestRecategorizer_BatchFailureContinues(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockExpenseRepository)
	candidates := []model.CategoryCandidate{
		{ID: "1", Description: "HOSPITAL"},
		{ID: "2", Description: "ESCOLA"},
		{ID: "3", Description: "TEATRO"},
	}
	repo.On("ListByCategory", ctx, classifier.Geral).Return(candidates, nil)
	repo.On("UpdateCategories", ctx, []model.CategoryUpdate{{ID: "1", Category: classifier.Saude}, {ID: "2", Category: classifier.Educacao}}).
		Return(errors.New("timeout")).Once()
	repo.On("UpdateCategories", ctx, []model.CategoryUpdate{{ID: "3", Category: classifier.Cultura}}).Return(nil).Once()

	rep, err := NewRecategorizer(repo, 2, nil).Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, rep.FailedBatches)
	assert.Equal(t, 1, rep.Recategorized)
	repo.AssertExpectations(t)
}

func TestRecategorizer_ListError(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockExpenseRepository)
	repo.On("ListByCategory", ctx, classifier.Geral).Return(nil, errors.New("down"))

	_, err := NewRecategorizer(repo, 100, nil).Run(ctx)

	assert.Error(t, err)
}
