// Package enricher implements the Enricher stage: it takes a detected
// anomaly and attaches contextual lookups — device metadata, 24h
// failure rates, similar historical anomalies and recent incidents for
// the same ship/domain — fanning the four columnar reads out
// concurrently so the total added latency is bounded by the slowest
// single lookup rather than their sum (spec §4.2, target p99 <= 500ms).
// Grounded on original_source/services/enrichment-service's
// "enrich in parallel, degrade gracefully" contract and
// internal/columnar's already-graceful-on-error query methods.
package enricher

import (
	"context"
	"sync"
	"time"

	"github.com/ilodestar/aiops-naas/internal/columnar"
	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/metrics"
	"github.com/ilodestar/aiops-naas/internal/tracking"
)

// Store is the subset of internal/columnar's read path the enricher
// depends on, narrowed to an interface so tests can substitute a fake
// store instead of dialing ClickHouse.
type Store interface {
	GetDeviceMetadata(ctx context.Context, shipID, deviceID string) (*columnar.DeviceMetadata, error)
	GetHistoricalFailureRates(ctx context.Context, shipID, domain string) columnar.FailureRates
	GetSimilarAnomalies(ctx context.Context, shipID, domain, anomalyType, metricName, service string) []columnar.SimilarAnomaly
	GetRecentIncidents(ctx context.Context, shipID, domain string, limit int) []columnar.RecentIncident
}

// Service enriches anomalies with columnar-store context.
type Service struct {
	store         Store
	logger        tracking.Logger
	lookupTimeout time.Duration
}

// New builds a Service. lookupTimeout bounds each of the four
// individual lookups (spec §4.2: "no single lookup may stall the
// fan-out past its own timeout").
func New(store Store, lookupTimeout time.Duration, logger tracking.Logger) *Service {
	if lookupTimeout <= 0 {
		lookupTimeout = 200 * time.Millisecond
	}
	return &Service{store: store, lookupTimeout: lookupTimeout, logger: logger}
}

// Enrich fans the four columnar lookups out concurrently and returns an
// AnomalyEnriched carrying whatever context was available in time. A
// device-metadata lookup that errors or finds nothing is omitted from
// context. The other three lookups report no error: a failed or
// timed-out one still fills its slot with the zero value it returned
// (zero failure rates, no similar anomalies, no recent incidents), and
// nothing in context marks a lookup as failed. Enrichment never blocks
// or fails the pipeline (spec invariant: enrichment is best-effort).
func (s *Service) Enrich(ctx context.Context, anomaly eventmodels.AnomalyDetected) *eventmodels.AnomalyEnriched {
	start := time.Now()
	defer func() { metrics.EnrichmentTotalDuration.Observe(time.Since(start).Seconds()) }()

	ctxDomain := string(anomaly.Domain)
	result := struct {
		mu       sync.Mutex
		context  map[string]interface{}
		tags     []string
	}{context: make(map[string]interface{})}

	var wg sync.WaitGroup
	run := func(name string, fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
			defer cancel()
			lookupStart := time.Now()
			fn(lookupCtx)
			metrics.EnrichmentLookupDuration.WithLabelValues(name).Observe(time.Since(lookupStart).Seconds())
		}()
	}

	run("device_metadata", func(lookupCtx context.Context) {
		meta, err := s.store.GetDeviceMetadata(lookupCtx, anomaly.ShipID, anomaly.DeviceID)
		if err != nil || meta == nil {
			if err != nil {
				metrics.EnrichmentLookupErrorsTotal.WithLabelValues("device_metadata").Inc()
			}
			return
		}
		result.mu.Lock()
		result.context["device"] = meta
		if meta.Criticality != "" {
			result.tags = append(result.tags, "criticality:"+meta.Criticality)
		}
		result.mu.Unlock()
	})

	run("failure_rates", func(lookupCtx context.Context) {
		rates := s.store.GetHistoricalFailureRates(lookupCtx, anomaly.ShipID, ctxDomain)
		result.mu.Lock()
		result.context["history"] = rates
		if rates.FailureRatePerHr > 1.0 {
			result.tags = append(result.tags, "elevated_failure_rate")
		}
		result.mu.Unlock()
	})

	run("similar_anomalies", func(lookupCtx context.Context) {
		similar := s.store.GetSimilarAnomalies(lookupCtx, anomaly.ShipID, ctxDomain, anomaly.AnomalyType, anomaly.MetricName, anomaly.Service)
		result.mu.Lock()
		result.context["similar"] = similar
		if len(similar) > 0 {
			result.tags = append(result.tags, "recurring")
		}
		result.mu.Unlock()
	})

	run("recent_incidents", func(lookupCtx context.Context) {
		recent := s.store.GetRecentIncidents(lookupCtx, anomaly.ShipID, ctxDomain, 5)
		result.mu.Lock()
		result.context["recent_incidents"] = recent
		if len(recent) > 0 {
			result.tags = append(result.tags, "recent_incident_history")
		}
		result.mu.Unlock()
	})

	wg.Wait()

	return &eventmodels.AnomalyEnriched{
		AnomalyDetected: anomaly,
		Context:         result.context,
		Tags:            result.tags,
	}
}
