// Package persistor implements the Incident Persistor stage: the last
// hop of the pipeline, consuming incidents.enriched and idempotently
// upserting each incident plus an append-only timeline entry into the
// columnar store (spec §4.5).
package persistor

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/metrics"
	"github.com/ilodestar/aiops-naas/internal/tracking"
)

// Store is the subset of internal/columnar's write path the persistor
// depends on, narrowed to an interface so tests can substitute a fake
// store instead of dialing ClickHouse.
type Store interface {
	UpsertIncident(ctx context.Context, incidentID, shipID, incidentType, severity, status string, createdAt, updatedAt time.Time, payload map[string]any) error
	AppendTimelineEntry(ctx context.Context, incidentID, eventType, detail string, at time.Time) error
}

// Service is the Incident Persistor.
type Service struct {
	store  Store
	logger tracking.Logger
}

// New builds a Service.
func New(store Store, logger tracking.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Persist re-applies ship_id resolution if the incident's ship_id is
// unusable, upserts the incident row, and appends one timeline entry
// for its current status. It is safe to call more than once for the
// same incident_id — both writes are idempotent (spec §4.5).
func (s *Service) Persist(ctx context.Context, enriched eventmodels.IncidentEnriched) error {
	shipID := resolveShipID(enriched.ShipID, s.logger, enriched.IncidentID)

	now := time.Now().UTC()
	payload := buildPayload(enriched)

	if err := s.store.UpsertIncident(ctx, enriched.IncidentID, shipID, string(enriched.IncidentType), string(enriched.Severity), string(enriched.Status), enriched.TS, now, payload); err != nil {
		metrics.PersistErrorsTotal.Inc()
		return err
	}

	if err := s.store.AppendTimelineEntry(ctx, enriched.IncidentID, string(enriched.Status), enriched.Summary, now); err != nil {
		metrics.PersistErrorsTotal.Inc()
		return err
	}

	metrics.IncidentsPersistedTotal.WithLabelValues(string(enriched.Status)).Inc()
	metrics.TimelineEntriesAppendedTotal.Inc()
	return nil
}

// resolveShipID enforces invariant (iii) one last time before the
// incident reaches durable storage. An IncidentEnriched carries no
// hostname to re-run a registry lookup against — by the time an
// anomaly has been windowed into an incident, whatever hostname it
// arrived with has already been resolved or exhausted by the detector
// (internal/registry.Client.Resolve) — so the only rung of that same
// fallback chain that can still apply here is its terminal one: no
// identifying hint survives, so the incident is stamped
// eventmodels.UnknownShipID rather than persisted with a blank or
// partially-written identity.
func resolveShipID(shipID string, logger tracking.Logger, incidentID string) string {
	if shipID != "" && !strings.HasPrefix(shipID, "unknown") {
		return shipID
	}
	if logger != nil {
		logger.Warn("persistor re-resolving unusable ship_id", "incident_id", incidentID, "original_ship_id", shipID)
	}
	return eventmodels.UnknownShipID
}

func buildPayload(enriched eventmodels.IncidentEnriched) map[string]any {
	payload := map[string]any{
		"summary":           enriched.Summary,
		"evidence":          enriched.Evidence,
		"meta":              enriched.Meta,
		"ai_insights":       enriched.AIInsights,
		"similar_incidents": enriched.SimilarIncidents,
		"cache_hit":         enriched.CacheHit,
		"processing_time_ms": enriched.ProcessingTimeMS,
	}
	// Round-trip through JSON so a fake store in tests sees plain
	// marshalable data exactly as a real columnar write would.
	raw, err := json.Marshal(payload)
	if err != nil {
		return payload
	}
	var normalized map[string]any
	if json.Unmarshal(raw, &normalized) == nil {
		return normalized
	}
	return payload
}
