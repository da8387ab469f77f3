package persistor

import (
	"context"
	"encoding/json"

	"github.com/ilodestar/aiops-naas/internal/bus"
	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/partition"
)

const (
	subjectIncidentIn   = eventmodels.SubjectIncidentsEnriched
	defaultPartitionFan = 8
)

// Run subscribes to incidents.enriched and persists each one, hashing
// onto partitionFan single-worker channels keyed by ship_id so one
// ship's backlog never blocks another's.
func (s *Service) Run(ctx context.Context, busClient *bus.Client, partitionFan int) error {
	if partitionFan <= 0 {
		partitionFan = defaultPartitionFan
	}

	workers := make([]chan eventmodels.IncidentEnriched, partitionFan)
	for i := range workers {
		workers[i] = make(chan eventmodels.IncidentEnriched, 64)
		go s.runWorker(ctx, workers[i])
	}

	return busClient.Subscribe(ctx, "persistor", subjectIncidentIn, 20, func(ctx context.Context, data []byte) error {
		var enriched eventmodels.IncidentEnriched
		if err := json.Unmarshal(data, &enriched); err != nil {
			return eventmodels.NewPipelineError(eventmodels.KindSchema, "", "malformed incident enriched json", err)
		}
		if !enriched.Envelope.Valid() {
			return eventmodels.NewPipelineError(eventmodels.KindSchema, enriched.TrackingID, "incident envelope failed validation", nil)
		}

		idx := partition.Index(enriched.ShipID, len(workers))
		select {
		case workers[idx] <- enriched:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (s *Service) runWorker(ctx context.Context, in <-chan eventmodels.IncidentEnriched) {
	for {
		select {
		case <-ctx.Done():
			return
		case enriched := <-in:
			if err := s.Persist(ctx, enriched); err != nil && s.logger != nil {
				s.logger.Error("persistor failed to write incident", "error", err, "incident_id", enriched.IncidentID)
			}
		}
	}
}
