package usagelogs

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mlsbridge/models"
)

type MockUsageLogsService struct {
	mock.Mock
}

func (m *MockUsageLogsService) RecordInvocation(ctx context.Context, entry *models.APIUsageLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockUsageLogsService) RecentInvocations(ctx context.Context, limit int) ([]models.APIUsageLog, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.APIUsageLog), args.Error(1)
}
