package enricher

import (
	"context"
	"encoding/json"

	"github.com/ilodestar/aiops-naas/internal/bus"
	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/partition"
)

const (
	subjectAnomalyIn       = eventmodels.SubjectAnomalyDetected
	subjectAnomalyEnriched = eventmodels.SubjectAnomalyEnriched
	defaultPartitionFan    = 8
)

// Run subscribes to anomaly.detected and publishes anomaly.enriched,
// hashing each record onto one of partitionFan single-worker channels
// keyed by ship_id so per-ship ordering survives the concurrent fan-out
// inside Enrich.
func (s *Service) Run(ctx context.Context, busClient *bus.Client, partitionFan int) error {
	if partitionFan <= 0 {
		partitionFan = defaultPartitionFan
	}
	workers := make([]chan eventmodels.AnomalyDetected, partitionFan)
	for i := range workers {
		workers[i] = make(chan eventmodels.AnomalyDetected, 64)
		go s.runWorker(ctx, busClient, workers[i])
	}

	return busClient.Subscribe(ctx, "enricher", subjectAnomalyIn, 20, func(ctx context.Context, data []byte) error {
		var anomaly eventmodels.AnomalyDetected
		if err := json.Unmarshal(data, &anomaly); err != nil {
			return eventmodels.NewPipelineError(eventmodels.KindSchema, "", "malformed anomaly detected json", err)
		}
		if !anomaly.Envelope.Valid() {
			return eventmodels.NewPipelineError(eventmodels.KindSchema, anomaly.TrackingID, "anomaly envelope failed validation", nil)
		}

		idx := partition.Index(anomaly.ShipID, len(workers))
		select {
		case workers[idx] <- anomaly:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (s *Service) runWorker(ctx context.Context, busClient *bus.Client, in <-chan eventmodels.AnomalyDetected) {
	for {
		select {
		case <-ctx.Done():
			return
		case anomaly := <-in:
			enriched := s.Enrich(ctx, anomaly)
			if err := busClient.Publish(ctx, subjectAnomalyEnriched, enriched); err != nil {
				if s.logger != nil {
					s.logger.Error("enricher failed to publish enriched anomaly", "error", err, "tracking_id", anomaly.TrackingID)
				}
			}
		}
	}
}
