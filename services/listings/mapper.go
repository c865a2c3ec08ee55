package listings

import (
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"mlsbridge/core"
	"mlsbridge/models"
)

// Candidate upstream field names per normalized attribute, in priority
// order. The upstream schema is duck-typed: the first present, non-empty
// key wins. New field-name variants go here, not into the control flow.
var (
	mlsIDKeys        = []string{"ListingKey", "ListingId", "listingKey", "id"}
	priceKeys        = []string{"ListPrice", "Price", "listPrice", "price"}
	bedsKeys         = []string{"BedroomsTotal", "Beds", "beds"}
	bathsKeys        = []string{"BathroomsTotalDecimal", "BathroomsTotalInteger", "Baths", "baths"}
	sqftKeys         = []string{"LivingArea", "BuildingAreaTotal", "Sqft", "sqft"}
	propertyTypeKeys = []string{"PropertyType", "PropertySubType", "propertyType"}
	addressKeys      = []string{"UnparsedAddress", "StreetAddress", "Address", "address"}
	cityKeys         = []string{"City", "city"}
	countyKeys       = []string{"CountyOrParish", "County", "county"}
	stateKeys        = []string{"StateOrProvince", "State", "state"}
	zipKeys          = []string{"PostalCode", "Zip", "zip", "zipCode"}
	statusKeys       = []string{"StandardStatus", "MlsStatus", "Status", "status"}
	remarksKeys      = []string{"PublicRemarks", "Remarks", "remarks", "Description"}
	latKeys          = []string{"Latitude", "latitude", "lat"}
	lngKeys          = []string{"Longitude", "longitude", "lng", "lon"}
	updatedKeys      = []string{"ModificationTimestamp", "modificationTimestamp", "UpdatedAt", "updatedAt"}
	mediaKeys        = []string{"Media", "media", "Photos", "photos"}
	mediaURLKeys     = []string{"MediaURL", "MediaUrl", "Url", "url", "href"}
)

// MapListing translates one upstream listing object into the normalized
// schema. It is pure: same input, same output, no I/O. Returns false when
// no external id resolves - an id-less record cannot be upserted and must
// be excluded from persistence.
func MapListing(raw map[string]any) (*models.Listing, bool) {
	mlsID := strings.TrimSpace(firstString(raw, mlsIDKeys))
	if mlsID == "" {
		return nil, false
	}

	listing := &models.Listing{
		ID:           core.NewID("lst"),
		MLSID:        mlsID,
		Price:        firstDecimal(raw, priceKeys),
		Beds:         firstInt(raw, bedsKeys),
		Baths:        firstDecimal(raw, bathsKeys),
		Sqft:         firstInt(raw, sqftKeys),
		PropertyType: firstString(raw, propertyTypeKeys),
		Address:      firstString(raw, addressKeys),
		City:         firstString(raw, cityKeys),
		County:       firstString(raw, countyKeys),
		State:        firstString(raw, stateKeys),
		Zip:          firstString(raw, zipKeys),
		Status:       firstString(raw, statusKeys),
		Remarks:      firstString(raw, remarksKeys),
		Lat:          firstFloat(raw, latKeys),
		Lng:          firstFloat(raw, lngKeys),
		Photos:       pq.StringArray(extractPhotoURLs(raw)),
	}

	if ts := firstTimestamp(raw, updatedKeys); ts != nil {
		listing.SourceUpdatedAt = ts
	}

	return listing, true
}

// MapListings maps a batch, dropping records with no resolvable external
// id. Returns the mapped records and the number rejected.
func MapListings(items []map[string]any) ([]*models.Listing, int) {
	mapped := make([]*models.Listing, 0, len(items))
	rejected := 0
	for _, item := range items {
		listing, ok := MapListing(item)
		if !ok {
			rejected++
			continue
		}
		mapped = append(mapped, listing)
	}
	return mapped, rejected
}

// extractPhotoURLs pulls ordered photo URLs out of the listing's media
// array, probing each media item's URL key and filtering blanks
func extractPhotoURLs(raw map[string]any) []string {
	urls := []string{}
	for _, key := range mediaKeys {
		arr, ok := raw[key].([]any)
		if !ok {
			continue
		}
		for _, entry := range arr {
			switch media := entry.(type) {
			case map[string]any:
				if u := strings.TrimSpace(firstString(media, mediaURLKeys)); u != "" {
					urls = append(urls, u)
				}
			case string:
				if u := strings.TrimSpace(media); u != "" {
					urls = append(urls, u)
				}
			}
		}
		break
	}
	return urls
}

func firstValue(raw map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		return v, true
	}
	return nil, false
}

func firstString(raw map[string]any, keys []string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		}
	}
	return ""
}

func firstNumber(raw map[string]any, keys []string) (float64, bool) {
	v, ok := firstValue(raw, keys)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func firstDecimal(raw map[string]any, keys []string) decimal.Decimal {
	n, ok := firstNumber(raw, keys)
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromFloat(n)
}

func firstInt(raw map[string]any, keys []string) int {
	n, ok := firstNumber(raw, keys)
	if !ok {
		return 0
	}
	return int(n)
}

func firstFloat(raw map[string]any, keys []string) *float64 {
	n, ok := firstNumber(raw, keys)
	if !ok {
		return nil
	}
	return &n
}

// firstTimestamp parses the first present timestamp key, accepting RFC3339
// and the second-precision variant some feeds emit
func firstTimestamp(raw map[string]any, keys []string) *time.Time {
	s := firstString(raw, keys)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}
	return nil
}
