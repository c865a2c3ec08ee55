package models

import (
	"time"
)

// Source keys for the ingest_state table
const (
	SourceMembers     = "realtyna_members"
	SourceOffices     = "realtyna_offices"
	SourceListings    = "realtyna_listings"
	SourceOpenHouses  = "realtyna_open_houses"
	SourcePostalCodes = "realtyna_postal_codes"
)

// IngestState records where the previous sync run for a source stopped,
// so the next run can resume from the same cursor. One row per source.
type IngestState struct {
	ID         string     `db:"id"           json:"id"`
	Source     string     `db:"source"       json:"source"`
	LastCursor *string    `db:"last_cursor"  json:"last_cursor,omitempty"`
	LastItemTS *time.Time `db:"last_item_ts" json:"last_item_ts,omitempty"`
	LastRunAt  time.Time  `db:"last_run_at"  json:"last_run_at"`
	CreatedAt  time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"   json:"updated_at"`
}
