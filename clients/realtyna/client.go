package realtyna

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"mlsbridge/clients"
)

// RealtynaClient implements the clients.MLSClient interface against the
// Realtyna MLS API. The upstream contract is only partially documented, so
// response parsing is defensive throughout: item batches and cursors are
// probed from several possible keys instead of a single fixed shape.
type RealtynaClient struct {
	httpClient *http.Client
	opts       Options
}

// Options configures the Realtyna client
type Options struct {
	BaseURL      string
	TokenURL     string // optional; defaults to BaseURL + /oauth/token
	ClientID     string
	ClientSecret string
	APIKey       string // optional; sent as x-api-key when present
	RedirectURI  string
	PageSize     int

	// Fixed geographic filter for the listings feed
	Counties    []string
	State       string
	BoundingBox string
}

// NewRealtynaClient creates a new Realtyna MLS API client
func NewRealtynaClient(opts Options) *RealtynaClient {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	return &RealtynaClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		opts:       opts,
	}
}

// The upstream response shape is not guaranteed: batches and cursors have
// been observed under different top-level keys across endpoints, including
// the OData-flavored {value, @odata.nextLink} variant.
var (
	itemKeys   = []string{"items", "data", "listings", "value"}
	cursorKeys = []string{"nextCursor", "next", "cursor", "@odata.nextLink"}
)

// Resource feed paths for the non-listing syncs
var resourcePaths = map[string]string{
	"members":      "/odata/Member",
	"offices":      "/odata/Office",
	"open_houses":  "/odata/OpenHouse",
	"postal_codes": "/odata/PostalCode",
}

func decodePayload(body []byte) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// extractItems returns the item batch from the first present array key.
// A missing batch is not an error, it is an empty page.
func extractItems(payload map[string]any) []map[string]any {
	for _, key := range itemKeys {
		arr, ok := payload[key].([]any)
		if !ok {
			continue
		}
		items := make([]map[string]any, 0, len(arr))
		for _, entry := range arr {
			if obj, ok := entry.(map[string]any); ok {
				items = append(items, obj)
			}
		}
		return items
	}
	return []map[string]any{}
}

// extractCursor returns the next cursor from the first present non-empty
// string key, or nil when the upstream supplied none
func extractCursor(payload map[string]any) *string {
	for _, key := range cursorKeys {
		s, ok := payload[key].(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		cursor := strings.TrimSpace(s)
		return &cursor
	}
	return nil
}

func pageFromPayload(payload map[string]any) *clients.Page {
	return &clients.Page{
		Items:      extractItems(payload),
		NextCursor: extractCursor(payload),
	}
}

var _ clients.MLSClient = (*RealtynaClient)(nil)
