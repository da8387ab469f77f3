package columnar

import (
	"context"
	"encoding/json"
	"time"
)

// UpsertIncident idempotently writes an incident row keyed by
// incident_id (ReplacingMergeTree semantics: a later write with the
// same incident_id and a newer updated_at wins on the next merge).
// Ported from the "incidents" table original_source's correlation and
// enrichment services both read from and write to.
func (c *Client) UpsertIncident(ctx context.Context, incidentID, shipID, incidentType, severity, status string, createdAt, updatedAt time.Time, payload map[string]any) error {
	ctx, cleanup := c.queryCtx(ctx, "upsert_incident")
	defer cleanup()

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		payloadJSON = []byte("{}")
	}

	return c.conn.Exec(ctx, `
		INSERT INTO incidents
			(incident_id, ship_id, incident_type, severity, status, created_at, updated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, incidentID, shipID, incidentType, severity, status, createdAt, updatedAt, string(payloadJSON))
}

// AppendTimelineEntry records one append-only timeline event for an
// incident (spec §4.6's persistor "timeline is append-only, never
// rewritten").
func (c *Client) AppendTimelineEntry(ctx context.Context, incidentID, eventType, detail string, at time.Time) error {
	ctx, cleanup := c.queryCtx(ctx, "append_timeline_entry")
	defer cleanup()

	return c.conn.Exec(ctx, `
		INSERT INTO incident_timeline (incident_id, event_type, detail, at)
		VALUES (?, ?, ?, ?)
	`, incidentID, eventType, detail, at)
}
