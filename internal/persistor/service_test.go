package persistor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
)

type upsertCall struct {
	incidentID, shipID, incidentType, severity, status string
	payload                                            map[string]any
}

type timelineCall struct {
	incidentID, eventType, detail string
}

type fakeStore struct {
	upserts       []upsertCall
	timelines     []timelineCall
	upsertErr     error
	timelineErr   error
}

func (f *fakeStore) UpsertIncident(ctx context.Context, incidentID, shipID, incidentType, severity, status string, createdAt, updatedAt time.Time, payload map[string]any) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, upsertCall{incidentID, shipID, incidentType, severity, status, payload})
	return nil
}

func (f *fakeStore) AppendTimelineEntry(ctx context.Context, incidentID, eventType, detail string, at time.Time) error {
	if f.timelineErr != nil {
		return f.timelineErr
	}
	f.timelines = append(f.timelines, timelineCall{incidentID, eventType, detail})
	return nil
}

func baseEnriched() eventmodels.IncidentEnriched {
	return eventmodels.IncidentEnriched{
		IncidentCreated: eventmodels.IncidentCreated{
			Envelope:     eventmodels.NewEnvelope("req-1", time.Now()),
			IncidentID:   "INC-dhruv-ship-system-1700000000",
			IncidentType: eventmodels.DomainSystem,
			ShipID:       "dhruv-ship",
			Severity:     eventmodels.SeverityHigh,
			Summary:      "3 anomalies detected in system",
			Status:       eventmodels.IncidentOpen,
		},
		AIInsights: eventmodels.AIInsights{RootCause: "rc", Remediation: "rem"},
	}
}

func TestPersist_WritesUpsertAndTimelineEntry(t *testing.T) {
	store := &fakeStore{}
	s := New(store, nil)

	err := s.Persist(context.Background(), baseEnriched())

	require.NoError(t, err)
	require.Len(t, store.upserts, 1)
	assert.Equal(t, "dhruv-ship", store.upserts[0].shipID)
	require.Len(t, store.timelines, 1)
	assert.Equal(t, "open", store.timelines[0].eventType)
}

func TestPersist_ReResolvesEmptyShipIDToUnknown(t *testing.T) {
	store := &fakeStore{}
	s := New(store, nil)
	enriched := baseEnriched()
	enriched.ShipID = ""

	err := s.Persist(context.Background(), enriched)

	require.NoError(t, err)
	assert.Equal(t, eventmodels.UnknownShipID, store.upserts[0].shipID)
}

func TestPersist_ReResolvesUnknownPrefixedShipID(t *testing.T) {
	store := &fakeStore{}
	s := New(store, nil)
	enriched := baseEnriched()
	enriched.ShipID = "unknown-whatever"

	err := s.Persist(context.Background(), enriched)

	require.NoError(t, err)
	assert.Equal(t, eventmodels.UnknownShipID, store.upserts[0].shipID)
}

func TestPersist_LeavesUsableShipIDUntouched(t *testing.T) {
	store := &fakeStore{}
	s := New(store, nil)

	err := s.Persist(context.Background(), baseEnriched())

	require.NoError(t, err)
	assert.Equal(t, "dhruv-ship", store.upserts[0].shipID)
}

func TestPersist_IsIdempotentAcrossRepeatedCalls(t *testing.T) {
	store := &fakeStore{}
	s := New(store, nil)
	enriched := baseEnriched()

	require.NoError(t, s.Persist(context.Background(), enriched))
	require.NoError(t, s.Persist(context.Background(), enriched))

	assert.Len(t, store.upserts, 2, "both calls must succeed without erroring on a repeat incident_id")
	assert.Equal(t, store.upserts[0].incidentID, store.upserts[1].incidentID)
}

func TestPersist_PropagatesUpsertError(t *testing.T) {
	store := &fakeStore{upsertErr: errors.New("clickhouse unavailable")}
	s := New(store, nil)

	err := s.Persist(context.Background(), baseEnriched())

	assert.Error(t, err)
}

func TestPersist_PropagatesTimelineError(t *testing.T) {
	store := &fakeStore{timelineErr: errors.New("clickhouse unavailable")}
	s := New(store, nil)

	err := s.Persist(context.Background(), baseEnriched())

	assert.Error(t, err)
}

func TestPersist_PayloadCarriesAIInsights(t *testing.T) {
	store := &fakeStore{}
	s := New(store, nil)

	require.NoError(t, s.Persist(context.Background(), baseEnriched()))

	insights, ok := store.upserts[0].payload["ai_insights"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "rc", insights["root_cause"])
}
