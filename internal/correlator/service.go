package correlator

import (
	"time"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/metrics"
	"github.com/ilodestar/aiops-naas/internal/tracking"
)

// Service is the Correlator (spec.md §4.3).
type Service struct {
	windows *Manager
	dedup   *DedupCache
	logger  tracking.Logger
}

// New builds a Service with the given correlation threshold and
// dedup-cache TTL.
func New(threshold int, dedupTTL time.Duration, logger tracking.Logger) *Service {
	return &Service{
		windows: NewManager(threshold),
		dedup:   NewDedupCache(dedupTTL),
		logger:  logger,
	}
}

// PendingIncident is a window that just fired and is awaiting a
// publish outcome; the caller must call Confirm on success or Cancel
// on failure so the window's state stays consistent with spec §4.3's
// at-least-once publish contract.
type PendingIncident struct {
	Incident    eventmodels.IncidentCreated
	shipID      string
	domain      eventmodels.Domain
	snapshotLen int
	service     *Service
}

// Confirm clears the published evidence from the window.
func (p *PendingIncident) Confirm() {
	p.service.windows.Confirm(p.shipID, p.domain, p.snapshotLen)
}

// Cancel leaves the window's evidence in place for a retry.
func (p *PendingIncident) Cancel() {
	p.service.windows.Cancel(p.shipID, p.domain)
}

// Correlate applies deduplication then windowing to one enriched
// anomaly. A nil PendingIncident means no incident fired yet (either
// the anomaly was suppressed as a duplicate, or its window has not
// reached threshold).
func (s *Service) Correlate(enriched eventmodels.AnomalyEnriched) *PendingIncident {
	if s.dedup.ShouldSuppress(enriched) {
		metrics.DuplicateAnomaliesDroppedTotal.WithLabelValues(string(enriched.Domain)).Inc()
		return nil
	}

	snapshot, fired := s.windows.Add(enriched.ShipID, enriched.Domain, enriched)
	s.reportWindowGauge()
	if !fired {
		return nil
	}

	incident := buildIncident(enriched.ShipID, enriched.Domain, snapshot, time.Now())
	return &PendingIncident{
		Incident:    incident,
		shipID:      enriched.ShipID,
		domain:      enriched.Domain,
		snapshotLen: len(snapshot),
		service:     s,
	}
}

// Sweep runs the periodic window and dedup-cache eviction pass (spec
// §4.3: "a periodic sweeper (every 60s)"). It logs how many anomalies
// were discarded per expired partition.
func (s *Service) Sweep() {
	discarded := s.windows.SweepExpired()
	for key, count := range discarded {
		if s.logger != nil {
			s.logger.Info("correlation window expired without reaching threshold", "window_key", key, "discarded_count", count)
		}
	}
	s.dedup.SweepExpired()
	s.reportWindowGauge()
}

func (s *Service) reportWindowGauge() {
	counts := s.windows.ActiveWindowCountByDomain()
	for domain := range eventmodels.DomainWindowSeconds {
		metrics.CorrelationWindowsActive.WithLabelValues(string(domain)).Set(float64(counts[domain]))
	}
	metrics.CorrelationWindowsActive.WithLabelValues(string(eventmodels.DomainApp)).Set(float64(counts[eventmodels.DomainApp]))
}
