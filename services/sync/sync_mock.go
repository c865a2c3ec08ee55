package sync

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mlsbridge/models"
)

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) SyncListings(ctx context.Context) (*models.StepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StepResult), args.Error(1)
}

func (m *MockSyncService) SyncResource(ctx context.Context, resource string) (*models.StepResult, error) {
	args := m.Called(ctx, resource)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StepResult), args.Error(1)
}

func (m *MockSyncService) RunAll(ctx context.Context) (*models.SyncReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncReport), args.Error(1)
}
