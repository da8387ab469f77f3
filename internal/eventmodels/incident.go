package eventmodels

// EvidenceItem is an opaque, backward-pointer-free summary of one
// contributing anomaly (spec §9 — incidents never point back to the
// anomaly record itself, only to a tracking_id and a small summary).
type EvidenceItem struct {
	TrackingID string  `json:"tracking_id"`
	TS         string  `json:"ts"`
	Detector   string  `json:"detector"`
	Score      float64 `json:"score"`
	Msg        string  `json:"msg"`
}

// IncidentMeta aggregates cross-anomaly bookkeeping for an incident.
type IncidentMeta struct {
	TrackingIDs    []string `json:"tracking_ids"`
	Detectors      []string `json:"detectors"`
	WindowSizeSecs int      `json:"window_size_seconds"`
}

// IncidentStatus is the incident lifecycle state.
type IncidentStatus string

const (
	IncidentOpen     IncidentStatus = "open"
	IncidentAck      IncidentStatus = "ack"
	IncidentResolved IncidentStatus = "resolved"
)

// IncidentCreated is produced by the Correlator. Once published it is
// append-only on the bus; mutation only happens via the persistor's
// upsert (spec invariant vi). Service/MetricName are carried through
// from the triggering anomaly so the incident enricher's cache key and
// vector query (spec §4.4) have a service/metric to key on without
// reaching back into the evidence.
type IncidentCreated struct {
	Envelope

	IncidentID   string         `json:"incident_id"`
	IncidentType Domain         `json:"incident_type"`
	ShipID       string         `json:"ship_id"`
	Severity     Severity       `json:"severity"`
	Service      string         `json:"service,omitempty"`
	MetricName   string         `json:"metric_name,omitempty"`
	Summary      string         `json:"summary"`
	Status       IncidentStatus `json:"status"`
	Evidence     []EvidenceItem `json:"evidence"`
	Meta         IncidentMeta   `json:"meta"`
}

// AIInsights is the LLM-generated root-cause/remediation pair. Both
// fields are always non-empty strings on the published record, whether
// generated or templated fallback (spec §4.4).
type AIInsights struct {
	RootCause   string `json:"root_cause"`
	Remediation string `json:"remediation"`
}

// SimilarIncident is one vector-similarity search hit.
type SimilarIncident struct {
	IncidentID      string  `json:"incident_id"`
	SimilarityScore float64 `json:"similarity_score"`
	Resolution      string  `json:"resolution"`
}

// IncidentEnriched wraps IncidentCreated with AI-generated insights,
// similarity recall and cache/timing bookkeeping.
type IncidentEnriched struct {
	IncidentCreated

	AIInsights       AIInsights        `json:"ai_insights"`
	SimilarIncidents []SimilarIncident `json:"similar_incidents"`
	CacheHit         bool              `json:"cache_hit"`
	ProcessingTimeMS int64             `json:"processing_time_ms"`
}

// TimelineEntry is one append-only state transition recorded by the
// persistor (spec §4.5).
type TimelineEntry struct {
	Status string `json:"status"`
	TSUnix int64  `json:"ts_unix"`
	Note   string `json:"note,omitempty"`
}
