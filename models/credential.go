package models

import (
	"time"
)

// ProviderRealtyna is the provider key for the Realtyna MLS feed
const ProviderRealtyna = "realtyna"

// CredentialRecord holds the current OAuth token pair for an upstream
// provider. There is exactly one row per provider, overwritten in place.
type CredentialRecord struct {
	ID           string    `db:"id"            json:"id"`
	Provider     string    `db:"provider"      json:"provider"`
	AccessToken  string    `db:"access_token"  json:"-"`
	RefreshToken *string   `db:"refresh_token" json:"-"`
	TokenType    string    `db:"token_type"    json:"token_type"`
	Scope        *string   `db:"scope"         json:"scope,omitempty"`
	ExpiresAt    time.Time `db:"expires_at"    json:"expires_at"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}

// HasRefreshToken reports whether a usable refresh token is stored
func (c *CredentialRecord) HasRefreshToken() bool {
	return c.RefreshToken != nil && *c.RefreshToken != ""
}

// TimeLeft returns the remaining lifetime of the access token
func (c *CredentialRecord) TimeLeft(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}
