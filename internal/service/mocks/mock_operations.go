package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"despesas/internal/service"
)

type MockOperations struct {
	mock.Mock
}

var _ service.Operations = (*MockOperations)(nil)

func (m *MockOperations) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOperations) StoredCount(ctx context.Context, year, month int) (int, error) {
	args := m.Called(ctx, year, month)
	return args.Int(0), args.Error(1)
}

func (m *MockOperations) Reconcile(ctx context.Context, year, month int) (service.ReconcileResult, error) {
	args := m.Called(ctx, year, month)
	return args.Get(0).(service.ReconcileResult), args.Error(1)
}
