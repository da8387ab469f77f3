// Package metrics defines the Prometheus counters and histograms each
// pipeline service registers with the default registry at startup. No
// service in this repository serves them over a /metrics HTTP endpoint.
// Grounded on the teacher's promauto var-block
// idiom, regrouped from one monolithic HTTP-server's surface into one
// section per pipeline stage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Detector metrics.
	AnomaliesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiops_anomalies_detected_total",
			Help: "Total number of anomalies emitted by the detector",
		},
		[]string{"domain", "severity"},
	)

	LogRecordsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiops_log_records_dropped_total",
			Help: "Total number of log records dropped before scoring (noise level or allow-listed text)",
		},
		[]string{"reason"}, // "level" | "allow_list"
	)

	// Enricher metrics.
	EnrichmentLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aiops_enrichment_lookup_duration_seconds",
			Help:    "Duration of a single columnar enrichment lookup",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"lookup"}, // device_metadata, failure_rates, similar_anomalies, recent_incidents
	)

	EnrichmentTotalDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aiops_enrichment_total_duration_seconds",
			Help:    "Duration of the full enrichment fan-out for one anomaly",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		},
	)

	EnrichmentLookupErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiops_enrichment_lookup_errors_total",
			Help: "Total number of enrichment lookups that degraded gracefully after a timeout or dependency failure",
		},
		[]string{"lookup"},
	)

	// Correlator metrics.
	IncidentsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiops_incidents_created_total",
			Help: "Total number of incidents created by the correlator",
		},
		[]string{"domain"},
	)

	CorrelationWindowsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aiops_correlation_windows_active",
			Help: "Number of open correlation windows",
		},
		[]string{"domain"},
	)

	DuplicateAnomaliesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiops_duplicate_anomalies_dropped_total",
			Help: "Total number of anomalies dropped as duplicates by the dedup cache",
		},
		[]string{"domain"},
	)

	WindowsExpiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiops_correlation_windows_expired_total",
			Help: "Total number of correlation windows swept away below threshold before firing",
		},
		[]string{"domain"},
	)

	// Incident enricher metrics.
	IncidentsProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aiops_incident_enricher_incidents_processed_total",
			Help: "Total number of incidents processed by the incident enricher",
		},
	)

	IncidentCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aiops_incident_enricher_cache_hits_total",
			Help: "Total number of LLM response cache hits",
		},
	)

	IncidentCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aiops_incident_enricher_cache_misses_total",
			Help: "Total number of LLM response cache misses",
		},
	)

	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiops_incident_enricher_llm_calls_total",
			Help: "Total number of LLM generation calls",
		},
		[]string{"prompt"}, // root_cause | remediation
	)

	LLMTimeoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiops_incident_enricher_llm_timeouts_total",
			Help: "Total number of LLM calls that exceeded their budget",
		},
		[]string{"prompt"},
	)

	IncidentEnrichmentErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aiops_incident_enricher_errors_total",
			Help: "Total number of incident enrichment attempts that fell back to templated output",
		},
	)

	// Persistor metrics.
	IncidentsPersistedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiops_persistor_incidents_persisted_total",
			Help: "Total number of incident upserts written to the columnar store",
		},
		[]string{"status"}, // open | ack | resolved
	)

	TimelineEntriesAppendedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aiops_persistor_timeline_entries_appended_total",
			Help: "Total number of append-only timeline entries written",
		},
	)

	PersistErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aiops_persistor_errors_total",
			Help: "Total number of incident upserts or timeline appends that failed",
		},
	)
)
