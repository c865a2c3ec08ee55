package ingeststate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/samber/mo"

	"mlsbridge/core"
	"mlsbridge/models"
)

// ingestStateRepository is the persistence surface the service needs
type ingestStateRepository interface {
	UpsertIngestState(ctx context.Context, state *models.IngestState) error
	GetIngestStateBySource(ctx context.Context, source string) (mo.Option[*models.IngestState], error)
	ListIngestStates(ctx context.Context) ([]models.IngestState, error)
}

type IngestStateService struct {
	stateRepo ingestStateRepository
}

func NewIngestStateService(repo ingestStateRepository) *IngestStateService {
	return &IngestStateService{stateRepo: repo}
}

// GetState returns the resume state for a source, if any
func (s *IngestStateService) GetState(ctx context.Context, source string) (mo.Option[*models.IngestState], error) {
	if source == "" {
		return mo.None[*models.IngestState](), fmt.Errorf("source cannot be empty")
	}
	return s.stateRepo.GetIngestStateBySource(ctx, source)
}

// AdvanceCursor records the latest resume cursor for a source. Callers only
// invoke this when the upstream supplied a next-cursor and at least one item
// was processed; an empty or cursor-less batch leaves the state untouched.
func (s *IngestStateService) AdvanceCursor(
	ctx context.Context,
	source, cursor string,
	lastItemTS *time.Time,
) error {
	log.Printf("📋 Starting to advance cursor for source: %s", source)

	if source == "" {
		return fmt.Errorf("source cannot be empty")
	}
	if cursor == "" {
		return fmt.Errorf("cursor cannot be empty")
	}

	state := &models.IngestState{
		ID:         core.NewID("ing"),
		Source:     source,
		LastCursor: &cursor,
		LastItemTS: lastItemTS,
		LastRunAt:  time.Now(),
	}
	if err := s.stateRepo.UpsertIngestState(ctx, state); err != nil {
		return fmt.Errorf("failed to advance cursor: %w", err)
	}

	log.Printf("📋 Completed successfully - cursor advanced for %s", source)
	return nil
}

// ListStates returns all resume states
func (s *IngestStateService) ListStates(ctx context.Context) ([]models.IngestState, error) {
	return s.stateRepo.ListIngestStates(ctx)
}
