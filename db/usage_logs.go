package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"mlsbridge/models"
)

type PostgresUsageLogsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for api_usage_logs table
var usageLogsColumns = []string{
	"id",
	"request_id",
	"endpoint",
	"status_code",
	"items_fetched",
	"items_processed",
	"items_failed",
	"cursor_before",
	"cursor_after",
	"duration_ms",
	"error",
	"created_at",
}

func NewPostgresUsageLogsRepository(db *sqlx.DB, schema string) *PostgresUsageLogsRepository {
	return &PostgresUsageLogsRepository{db: db, schema: schema}
}

// InsertUsageLog appends one audit entry. The audit trail is insert-only
// and deliberately runs outside sync transactions: a failed sync must still
// leave its log entry behind.
func (r *PostgresUsageLogsRepository) InsertUsageLog(
	ctx context.Context,
	entry *models.APIUsageLog,
) error {
	returningStr := strings.Join(usageLogsColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s.api_usage_logs (
			id, request_id, endpoint, status_code, items_fetched, items_processed,
			items_failed, cursor_before, cursor_after, duration_ms, error, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING %s`, r.schema, returningStr)

	err := r.db.QueryRowxContext(
		ctx,
		query,
		entry.ID,
		entry.RequestID,
		entry.Endpoint,
		entry.StatusCode,
		entry.ItemsFetched,
		entry.ItemsProcessed,
		entry.ItemsFailed,
		entry.CursorBefore,
		entry.CursorAfter,
		entry.DurationMS,
		entry.Error,
	).StructScan(entry)
	if err != nil {
		return fmt.Errorf("failed to insert usage log: %w", err)
	}

	return nil
}

// ListRecentUsageLogs returns the most recent audit entries
func (r *PostgresUsageLogsRepository) ListRecentUsageLogs(
	ctx context.Context,
	limit int,
) ([]models.APIUsageLog, error) {
	if limit <= 0 {
		limit = 50
	}

	columnsStr := strings.Join(usageLogsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.api_usage_logs
		ORDER BY created_at DESC
		LIMIT $1`, columnsStr, r.schema)

	logs := []models.APIUsageLog{}
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list usage logs: %w", err)
	}

	return logs, nil
}
