package txmanager

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTransactionManager is a mock implementation of the TransactionManager interface
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// PassthroughTransactionManager executes the function directly without a
// database, for tests that assert on what happens inside the transaction
type PassthroughTransactionManager struct{}

func (PassthroughTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
