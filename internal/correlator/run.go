package correlator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ilodestar/aiops-naas/internal/bus"
	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/metrics"
	"github.com/ilodestar/aiops-naas/internal/partition"
)

const (
	subjectAnomalyIn      = eventmodels.SubjectAnomalyEnriched
	subjectIncidentOut    = eventmodels.SubjectIncidentsCreated
	defaultPartitionFan   = 8
	defaultSweepInterval  = 60 * time.Second
)

// Run subscribes to anomaly.enriched and publishes incidents.created,
// hashing each record onto one of partitionFan single-worker channels
// keyed by (ship_id, domain) so windows are never touched by two
// goroutines at once for the same partition, and starts the periodic
// sweeper (spec §4.3: "every 60s").
func (s *Service) Run(ctx context.Context, busClient *bus.Client, partitionFan int, sweepInterval time.Duration) error {
	if partitionFan <= 0 {
		partitionFan = defaultPartitionFan
	}
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}

	workers := make([]chan eventmodels.AnomalyEnriched, partitionFan)
	for i := range workers {
		workers[i] = make(chan eventmodels.AnomalyEnriched, 64)
		go s.runWorker(ctx, busClient, workers[i])
	}

	go s.sweepLoop(ctx, sweepInterval)

	return busClient.Subscribe(ctx, "correlator", subjectAnomalyIn, 20, func(ctx context.Context, data []byte) error {
		var enriched eventmodels.AnomalyEnriched
		if err := json.Unmarshal(data, &enriched); err != nil {
			return eventmodels.NewPipelineError(eventmodels.KindSchema, "", "malformed anomaly enriched json", err)
		}
		if !enriched.Envelope.Valid() {
			return eventmodels.NewPipelineError(eventmodels.KindSchema, enriched.TrackingID, "anomaly envelope failed validation", nil)
		}

		key := WindowKey(enriched.ShipID, enriched.Domain)
		idx := partition.Index(key, len(workers))
		select {
		case workers[idx] <- enriched:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (s *Service) sweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Service) runWorker(ctx context.Context, busClient *bus.Client, in <-chan eventmodels.AnomalyEnriched) {
	for {
		select {
		case <-ctx.Done():
			return
		case enriched := <-in:
			s.handle(ctx, busClient, enriched)
		}
	}
}

func (s *Service) handle(ctx context.Context, busClient *bus.Client, enriched eventmodels.AnomalyEnriched) {
	pending := s.Correlate(enriched)
	if pending == nil {
		return
	}

	if err := busClient.Publish(ctx, subjectIncidentOut, pending.Incident); err != nil {
		pending.Cancel()
		if s.logger != nil {
			s.logger.Error("correlator failed to publish incident, window retained", "error", err, "incident_id", pending.Incident.IncidentID)
		}
		return
	}
	pending.Confirm()
	metrics.IncidentsCreatedTotal.WithLabelValues(string(pending.Incident.IncidentType)).Inc()
}
