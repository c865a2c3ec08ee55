package ingeststate

import (
	"context"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"mlsbridge/models"
)

type MockIngestStateService struct {
	mock.Mock
}

func (m *MockIngestStateService) GetState(ctx context.Context, source string) (mo.Option[*models.IngestState], error) {
	args := m.Called(ctx, source)
	return args.Get(0).(mo.Option[*models.IngestState]), args.Error(1)
}

func (m *MockIngestStateService) AdvanceCursor(ctx context.Context, source, cursor string, lastItemTS *time.Time) error {
	args := m.Called(ctx, source, cursor, lastItemTS)
	return args.Error(0)
}

func (m *MockIngestStateService) ListStates(ctx context.Context) ([]models.IngestState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.IngestState), args.Error(1)
}
