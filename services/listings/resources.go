package listings

import (
	"encoding/json"
	"strings"

	"github.com/jmoiron/sqlx/types"

	"mlsbridge/core"
	"mlsbridge/models"
)

// Candidate external-id keys per non-listing resource, in priority order
var resourceIDKeys = map[string][]string{
	models.ResourceMembers:     {"MemberKey", "MemberId", "memberKey", "id"},
	models.ResourceOffices:     {"OfficeKey", "OfficeId", "officeKey", "id"},
	models.ResourceOpenHouses:  {"OpenHouseKey", "OpenHouseId", "openHouseKey", "id"},
	models.ResourcePostalCodes: {"PostalCode", "postalCode", "Zip", "id"},
}

// MapResourceRecord wraps one upstream record from a non-listing resource
// feed. The payload is stored as-is; only the external id and the source
// timestamp are extracted. Returns false when no external id resolves.
func MapResourceRecord(resource string, raw map[string]any) (*models.ResourceRecord, bool) {
	keys, ok := resourceIDKeys[resource]
	if !ok {
		return nil, false
	}

	externalID := strings.TrimSpace(firstString(raw, keys))
	if externalID == "" {
		return nil, false
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, false
	}

	record := &models.ResourceRecord{
		ID:         core.NewID("rec"),
		Resource:   resource,
		ExternalID: externalID,
		Payload:    types.JSONText(payload),
	}
	if ts := firstTimestamp(raw, updatedKeys); ts != nil {
		record.SourceUpdatedAt = ts
	}

	return record, true
}
