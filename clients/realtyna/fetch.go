package realtyna

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mlsbridge/clients"
	"mlsbridge/core"
)

// FetchListings retrieves one page of listings. The cursor is opaque; a nil
// cursor starts from the beginning. A page with zero items is valid.
func (c *RealtynaClient) FetchListings(
	ctx context.Context,
	accessToken string,
	cursor *string,
) (*clients.Page, error) {
	u, err := url.Parse(c.opts.BaseURL + "/listings")
	if err != nil {
		return nil, fmt.Errorf("failed to build listings URL: %w", err)
	}

	q := u.Query()
	q.Set("limit", strconv.Itoa(c.opts.PageSize))
	q.Set("status", "Active,Coming Soon")
	if cursor != nil && *cursor != "" {
		q.Set("cursor", *cursor)
	}
	if len(c.opts.Counties) > 0 {
		q.Set("counties", strings.Join(c.opts.Counties, ","))
	}
	if c.opts.State != "" {
		q.Set("state", c.opts.State)
	}
	if c.opts.BoundingBox != "" {
		q.Set("bbox", c.opts.BoundingBox)
	}
	u.RawQuery = q.Encode()

	payload, err := c.getJSON(ctx, u.String(), accessToken)
	if err != nil {
		return nil, err
	}

	return pageFromPayload(payload), nil
}

// FetchResource retrieves one page of an OData resource feed. OData nextLink
// cursors are absolute URLs and are followed directly; other cursors are
// passed as a query parameter.
func (c *RealtynaClient) FetchResource(
	ctx context.Context,
	accessToken, resource string,
	cursor *string,
) (*clients.Page, error) {
	path, ok := resourcePaths[resource]
	if !ok {
		return nil, fmt.Errorf("unknown resource: %s", resource)
	}

	var endpoint string
	if cursor != nil && strings.HasPrefix(*cursor, "http") {
		endpoint = *cursor
	} else {
		u, err := url.Parse(c.opts.BaseURL + path)
		if err != nil {
			return nil, fmt.Errorf("failed to build resource URL: %w", err)
		}
		q := u.Query()
		q.Set("$top", strconv.Itoa(c.opts.PageSize))
		if cursor != nil && *cursor != "" {
			q.Set("cursor", *cursor)
		}
		u.RawQuery = q.Encode()
		endpoint = u.String()
	}

	payload, err := c.getJSON(ctx, endpoint, accessToken)
	if err != nil {
		return nil, err
	}

	return pageFromPayload(payload), nil
}

func (c *RealtynaClient) getJSON(ctx context.Context, endpoint, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if c.opts.APIKey != "" {
		req.Header.Set("x-api-key", c.opts.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &core.NetworkError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &core.UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	payload, err := decodePayload(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return payload, nil
}
