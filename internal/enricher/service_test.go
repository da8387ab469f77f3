package enricher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilodestar/aiops-naas/internal/columnar"
	"github.com/ilodestar/aiops-naas/internal/eventmodels"
)

type fakeStore struct {
	metadata     *columnar.DeviceMetadata
	metadataErr  error
	rates        columnar.FailureRates
	similar      []columnar.SimilarAnomaly
	recent       []columnar.RecentIncident
	lookupDelay  time.Duration
}

func (f *fakeStore) GetDeviceMetadata(ctx context.Context, shipID, deviceID string) (*columnar.DeviceMetadata, error) {
	if f.lookupDelay > 0 {
		select {
		case <-time.After(f.lookupDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.metadata, f.metadataErr
}

func (f *fakeStore) GetHistoricalFailureRates(ctx context.Context, shipID, domain string) columnar.FailureRates {
	return f.rates
}

func (f *fakeStore) GetSimilarAnomalies(ctx context.Context, shipID, domain, anomalyType, metricName, service string) []columnar.SimilarAnomaly {
	return f.similar
}

func (f *fakeStore) GetRecentIncidents(ctx context.Context, shipID, domain string, limit int) []columnar.RecentIncident {
	return f.recent
}

func baseAnomaly() eventmodels.AnomalyDetected {
	return eventmodels.AnomalyDetected{
		Envelope:    eventmodels.NewEnvelope("req-1", time.Now()),
		ShipID:      "dhruv-ship",
		DeviceID:    "dev-1",
		Service:     "engine-monitor",
		Domain:      eventmodels.DomainSystem,
		Detector:    "log-severity",
		Severity:    eventmodels.SeverityHigh,
		AnomalyType: "log_high",
	}
}

func TestEnrich_AttachesContextAndTagsFromAllFourLookups(t *testing.T) {
	store := &fakeStore{
		metadata: &columnar.DeviceMetadata{Criticality: "high"},
		rates:    columnar.FailureRates{FailureRatePerHr: 2.5},
		similar:  []columnar.SimilarAnomaly{{Detector: "log-severity"}},
		recent:   []columnar.RecentIncident{{IncidentID: "INC-1"}},
	}
	s := New(store, 100*time.Millisecond, nil)

	enriched := s.Enrich(context.Background(), baseAnomaly())

	require.NotNil(t, enriched)
	assert.Contains(t, enriched.Context, "device")
	assert.Contains(t, enriched.Context, "history")
	assert.Contains(t, enriched.Context, "similar")
	assert.Contains(t, enriched.Context, "recent_incidents")
	assert.Contains(t, enriched.Tags, "criticality:high")
	assert.Contains(t, enriched.Tags, "elevated_failure_rate")
	assert.Contains(t, enriched.Tags, "recurring")
	assert.Contains(t, enriched.Tags, "recent_incident_history")
}

func TestEnrich_OmitsLookupOnError(t *testing.T) {
	store := &fakeStore{metadataErr: errors.New("connection reset")}
	s := New(store, 100*time.Millisecond, nil)

	enriched := s.Enrich(context.Background(), baseAnomaly())

	assert.NotContains(t, enriched.Context, "device")
	assert.NotContains(t, enriched.Tags, "criticality:high")
}

func TestEnrich_OmitsLookupOnTimeout(t *testing.T) {
	store := &fakeStore{lookupDelay: 50 * time.Millisecond}
	s := New(store, 5*time.Millisecond, nil)

	enriched := s.Enrich(context.Background(), baseAnomaly())

	assert.NotContains(t, enriched.Context, "device")
}

func TestEnrich_PreservesOriginalAnomalyFields(t *testing.T) {
	store := &fakeStore{}
	s := New(store, 100*time.Millisecond, nil)
	anomaly := baseAnomaly()

	enriched := s.Enrich(context.Background(), anomaly)

	assert.Equal(t, anomaly.ShipID, enriched.ShipID)
	assert.Equal(t, anomaly.TrackingID, enriched.TrackingID)
	assert.Equal(t, anomaly.Severity, enriched.Severity)
}
