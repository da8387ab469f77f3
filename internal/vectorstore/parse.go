package vectorstore

import (
	"time"

	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
)

// parseSearchResponse walks the nested map[string]any shape the official
// client returns for a Get query and extracts Incident rows. Generalized
// from the property-parsing idiom in internal/weavstore/failures_store.go
// (GetFailure's field-by-field map assertions), applied here to GraphQL
// rather than REST object properties.
func parseSearchResponse(resp *graphql.GetResponse) ([]SimilarIncident, error) {
	var out []SimilarIncident

	get, ok := resp.Data["Get"].(map[string]any)
	if !ok {
		return out, nil
	}
	rows, ok := get[className].([]any)
	if !ok {
		return out, nil
	}

	for _, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			continue
		}
		item := SimilarIncident{}
		if v, ok := m["incidentId"].(string); ok {
			item.IncidentID = v
		}
		if v, ok := m["domain"].(string); ok {
			item.Domain = v
		}
		if v, ok := m["severity"].(string); ok {
			item.Severity = v
		}
		if v, ok := m["service"].(string); ok {
			item.Service = v
		}
		if v, ok := m["resolution"].(string); ok {
			item.Resolution = v
		}
		if v, ok := m["timestamp"].(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
				item.Timestamp = t
			}
		}
		if add, ok := m["_additional"].(map[string]any); ok {
			if d, ok := add["distance"].(float64); ok {
				item.Distance = float32(d)
			}
		}
		out = append(out, item)
	}
	return out, nil
}
