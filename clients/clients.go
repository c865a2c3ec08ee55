package clients

import (
	"context"
	"time"
)

// TokenGrant is the result of a successful token-endpoint exchange
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string
	ExpiresAt    time.Time
}

// Page is one batch of upstream records plus the cursor for the next batch.
// NextCursor is nil when the upstream reports no further pages.
type Page struct {
	Items      []map[string]any
	NextCursor *string
}

// MLSClient defines the interface for the upstream MLS API
type MLSClient interface {
	// AcquireClientCredentials performs a client-credentials grant
	AcquireClientCredentials(ctx context.Context) (*TokenGrant, error)

	// ExchangeAuthCode performs an authorization-code grant, trying a fixed
	// list of plausible (endpoint, auth-style) combinations
	ExchangeAuthCode(ctx context.Context, code string) (*TokenGrant, error)

	// RefreshAccessToken performs a refresh-token grant
	RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenGrant, error)

	// FetchListings retrieves one page of listings from the given cursor
	FetchListings(ctx context.Context, accessToken string, cursor *string) (*Page, error)

	// FetchResource retrieves one page of an OData resource feed
	// (members, offices, open houses, postal codes)
	FetchResource(ctx context.Context, accessToken, resource string, cursor *string) (*Page, error)
}
