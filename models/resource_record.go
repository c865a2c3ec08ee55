package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Resource names for the non-listing MLS feeds
const (
	ResourceMembers     = "members"
	ResourceOffices     = "offices"
	ResourceOpenHouses  = "open_houses"
	ResourcePostalCodes = "postal_codes"
)

// ResourceRecord stores one upstream record from a non-listing resource
// (members, offices, open houses, postal codes) as raw JSON, keyed by
// (resource, external_id) for upserts.
type ResourceRecord struct {
	ID              string         `db:"id"                json:"id"`
	Resource        string         `db:"resource"          json:"resource"`
	ExternalID      string         `db:"external_id"       json:"external_id"`
	Payload         types.JSONText `db:"payload"           json:"payload"`
	SourceUpdatedAt *time.Time     `db:"source_updated_at" json:"source_updated_at,omitempty"`
	CreatedAt       time.Time      `db:"created_at"        json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"        json:"updated_at"`
}
