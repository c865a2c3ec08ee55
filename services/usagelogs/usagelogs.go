package usagelogs

import (
	"context"
	"fmt"
	"log"

	"mlsbridge/core"
	"mlsbridge/models"
)

type usageLogsRepository interface {
	InsertUsageLog(ctx context.Context, entry *models.APIUsageLog) error
	ListRecentUsageLogs(ctx context.Context, limit int) ([]models.APIUsageLog, error)
}

type UsageLogsService struct {
	logsRepo usageLogsRepository
}

func NewUsageLogsService(repo usageLogsRepository) *UsageLogsService {
	return &UsageLogsService{logsRepo: repo}
}

// RecordInvocation persists one audit entry per upstream call. Audit writes
// happen outside sync transactions so a rolled-back batch still leaves a trace.
func (s *UsageLogsService) RecordInvocation(ctx context.Context, entry *models.APIUsageLog) error {
	if entry == nil {
		return fmt.Errorf("entry cannot be nil")
	}
	if entry.RequestID == "" {
		return fmt.Errorf("request ID cannot be empty")
	}
	if entry.ID == "" {
		entry.ID = core.NewID("log")
	}

	if err := s.logsRepo.InsertUsageLog(ctx, entry); err != nil {
		// a failed audit write must not fail the sync it describes
		log.Printf("❌ Failed to record API invocation %s: %v", entry.RequestID, err)
		return fmt.Errorf("failed to record invocation: %w", err)
	}
	return nil
}

func (s *UsageLogsService) RecentInvocations(ctx context.Context, limit int) ([]models.APIUsageLog, error) {
	return s.logsRepo.ListRecentUsageLogs(ctx, limit)
}
