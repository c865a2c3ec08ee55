package models

import (
	"time"
)

// RefreshResult reports the outcome of a refresh-if-needed check. When the
// stored token is not near expiry the check is a pure read: Refreshed is
// false and MinutesLeft carries the remaining lifetime.
type RefreshResult struct {
	Refreshed   bool              `json:"refreshed"`
	MinutesLeft int               `json:"minutes_left"`
	Credential  *CredentialRecord `json:"-"`
}

// StepResult is the outcome of one named sync step
type StepResult struct {
	Source         string  `json:"source"`
	RequestID      string  `json:"request_id"`
	ItemsFetched   int     `json:"items_fetched"`
	ItemsProcessed int     `json:"items_processed"`
	ItemsFailed    int     `json:"items_failed"`
	CursorBefore   *string `json:"cursor_before,omitempty"`
	CursorAfter    *string `json:"cursor_after,omitempty"`
	DurationMS     int64   `json:"duration_ms"`
	Error          string  `json:"error,omitempty"`
}

// Failed reports whether the step ended with an error
func (r *StepResult) Failed() bool {
	return r.Error != ""
}

// SyncReport aggregates a multi-source orchestration run. Success is true
// only when zero errors were collected across all steps.
type SyncReport struct {
	Success    bool         `json:"success"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Steps      []StepResult `json:"steps"`
	Errors     []string     `json:"errors"`
}
