package incidentenricher

import (
	"context"
	"encoding/json"

	"github.com/ilodestar/aiops-naas/internal/bus"
	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/partition"
)

const (
	subjectIncidentIn   = eventmodels.SubjectIncidentsCreated
	subjectIncidentOut  = eventmodels.SubjectIncidentsEnriched
	defaultPartitionFan = 8
)

// Run subscribes to incidents.created and publishes incidents.enriched,
// hashing each incident onto one of partitionFan single-worker channels
// keyed by ship_id so a busy ship's enrichments don't starve behind a
// slow LLM call on another ship's worker.
func (s *Service) Run(ctx context.Context, busClient *bus.Client, partitionFan int) error {
	if partitionFan <= 0 {
		partitionFan = defaultPartitionFan
	}

	workers := make([]chan eventmodels.IncidentCreated, partitionFan)
	for i := range workers {
		workers[i] = make(chan eventmodels.IncidentCreated, 64)
		go s.runWorker(ctx, busClient, workers[i])
	}

	return busClient.Subscribe(ctx, "incident-enricher", subjectIncidentIn, 10, func(ctx context.Context, data []byte) error {
		var incident eventmodels.IncidentCreated
		if err := json.Unmarshal(data, &incident); err != nil {
			return eventmodels.NewPipelineError(eventmodels.KindSchema, "", "malformed incident created json", err)
		}
		if !incident.Envelope.Valid() {
			return eventmodels.NewPipelineError(eventmodels.KindSchema, incident.TrackingID, "incident envelope failed validation", nil)
		}

		idx := partition.Index(incident.ShipID, len(workers))
		select {
		case workers[idx] <- incident:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (s *Service) runWorker(ctx context.Context, busClient *bus.Client, in <-chan eventmodels.IncidentCreated) {
	for {
		select {
		case <-ctx.Done():
			return
		case incident := <-in:
			enriched := s.Enrich(ctx, incident)
			if err := busClient.Publish(ctx, subjectIncidentOut, enriched); err != nil {
				if s.logger != nil {
					s.logger.Error("incident enricher failed to publish enriched incident", "error", err, "incident_id", incident.IncidentID)
				}
			}
		}
	}
}
