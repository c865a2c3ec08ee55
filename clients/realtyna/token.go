package realtyna

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mlsbridge/clients"
	"mlsbridge/core"
)

// tokenResponse is the expected JSON body from the upstream token endpoint
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

// authCodeCandidates lists the (token path, credential transmission)
// combinations tried during the authorization-code exchange. The upstream's
// exact token contract is unverified, so each combination is tried once in
// order and the first 2xx wins. This is not a retry mechanism.
var authCodeCandidates = []struct {
	path      string
	basicAuth bool
}{
	{"/oauth/token", true},
	{"/oauth/token", false},
	{"/connect/token", true},
	{"/connect/token", false},
	{"/auth/token", false},
}

// AcquireClientCredentials exchanges client credentials for a token pair
func (c *RealtynaClient) AcquireClientCredentials(ctx context.Context) (*clients.TokenGrant, error) {
	if c.opts.ClientID == "" || c.opts.ClientSecret == "" {
		return nil, &core.ConfigError{Missing: "REALTYNA_CLIENT_ID / REALTYNA_CLIENT_SECRET"}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.opts.ClientID)
	form.Set("client_secret", c.opts.ClientSecret)

	return c.postTokenForm(ctx, c.tokenURL(), form, false)
}

// ExchangeAuthCode exchanges an authorization code for a token pair, probing
// the candidate endpoint/auth-style combinations until one returns 2xx
func (c *RealtynaClient) ExchangeAuthCode(ctx context.Context, code string) (*clients.TokenGrant, error) {
	if c.opts.ClientID == "" || c.opts.ClientSecret == "" {
		return nil, &core.ConfigError{Missing: "REALTYNA_CLIENT_ID / REALTYNA_CLIENT_SECRET"}
	}
	if code == "" {
		return nil, fmt.Errorf("authorization code cannot be empty")
	}

	var lastErr error
	for _, candidate := range authCodeCandidates {
		form := url.Values{}
		form.Set("grant_type", "authorization_code")
		form.Set("code", code)
		if c.opts.RedirectURI != "" {
			form.Set("redirect_uri", c.opts.RedirectURI)
		}
		if !candidate.basicAuth {
			form.Set("client_id", c.opts.ClientID)
			form.Set("client_secret", c.opts.ClientSecret)
		}

		grant, err := c.postTokenForm(ctx, c.opts.BaseURL+candidate.path, form, candidate.basicAuth)
		if err == nil {
			return grant, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("all token endpoint candidates failed: %w", lastErr)
}

// RefreshAccessToken exchanges a refresh token for a new token pair
func (c *RealtynaClient) RefreshAccessToken(ctx context.Context, refreshToken string) (*clients.TokenGrant, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token cannot be empty")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.opts.ClientID)
	if c.opts.ClientSecret != "" {
		form.Set("client_secret", c.opts.ClientSecret)
	}

	return c.postTokenForm(ctx, c.tokenURL(), form, false)
}

func (c *RealtynaClient) tokenURL() string {
	if c.opts.TokenURL != "" {
		return c.opts.TokenURL
	}
	return c.opts.BaseURL + "/oauth/token"
}

func (c *RealtynaClient) postTokenForm(
	ctx context.Context,
	endpoint string,
	form url.Values,
	basicAuth bool,
) (*clients.TokenGrant, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if basicAuth {
		req.SetBasicAuth(c.opts.ClientID, c.opts.ClientSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &core.NetworkError{Op: "token exchange", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &core.UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("missing access_token in token response")
	}

	expiresIn := tokenResp.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	tokenType := tokenResp.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}

	return &clients.TokenGrant{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		TokenType:    tokenType,
		Scope:        tokenResp.Scope,
		ExpiresAt:    time.Now().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}
