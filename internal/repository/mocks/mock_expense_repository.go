package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"despesas/internal/model"
	"despesas/internal/repository"
)

type MockExpenseRepository struct {
	mock.Mock
}

var _ repository.ExpenseRepository = (*MockExpenseRepository)(nil)

func (m *MockExpenseRepository) UpsertBatch(ctx context.Context, batch []model.Expense) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockExpenseRepository) CountByPeriod(ctx context.Context, year, month int) (int, error) {
	args := m.Called(ctx, year, month)
	return args.Int(0), args.Error(1)
}

func (m *MockExpenseRepository) CountByCategory(ctx context.Context, category string) (int, error) {
	args := m.Called(ctx, category)
	return args.Int(0), args.Error(1)
}

func (m *MockExpenseRepository) ListByCategory(ctx context.Context, category string) ([]model.CategoryCandidate, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CategoryCandidate), args.Error(1)
}

func (m *MockExpenseRepository) UpdateCategories(ctx context.Context, updates []model.CategoryUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockExpenseRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
