package models

import (
	"time"
)

// APIUsageLog is one audit entry per sync invocation: which endpoint ran,
// how it ended, how many items moved, and the cursor transition.
type APIUsageLog struct {
	ID             string    `db:"id"              json:"id"`
	RequestID      string    `db:"request_id"      json:"request_id"`
	Endpoint       string    `db:"endpoint"        json:"endpoint"`
	StatusCode     int       `db:"status_code"     json:"status_code"`
	ItemsFetched   int       `db:"items_fetched"   json:"items_fetched"`
	ItemsProcessed int       `db:"items_processed" json:"items_processed"`
	ItemsFailed    int       `db:"items_failed"    json:"items_failed"`
	CursorBefore   *string   `db:"cursor_before"   json:"cursor_before,omitempty"`
	CursorAfter    *string   `db:"cursor_after"    json:"cursor_after,omitempty"`
	DurationMS     int64     `db:"duration_ms"     json:"duration_ms"`
	Error          *string   `db:"error"           json:"error,omitempty"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
}
