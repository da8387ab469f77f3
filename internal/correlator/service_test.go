package correlator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
)

func serviceAnomaly(trackingID string) eventmodels.AnomalyEnriched {
	return eventmodels.AnomalyEnriched{
		AnomalyDetected: eventmodels.AnomalyDetected{
			Envelope:    eventmodels.NewEnvelope(trackingID, time.Now()),
			ShipID:      "dhruv-ship",
			Domain:      eventmodels.DomainSystem,
			Service:     "engine-monitor",
			AnomalyType: "log_high",
			Severity:    eventmodels.SeverityHigh,
			Detector:    "log-severity",
		},
	}
}

func TestCorrelate_FiresIncidentAtThreshold(t *testing.T) {
	s := New(3, time.Minute, nil)

	assert.Nil(t, s.Correlate(serviceAnomaly("req-1")))
	assert.Nil(t, s.Correlate(serviceAnomaly("req-2")))

	pending := s.Correlate(serviceAnomaly("req-3"))
	require.NotNil(t, pending)
	assert.Equal(t, "dhruv-ship", pending.Incident.ShipID)
	assert.Len(t, pending.Incident.Evidence, 3)
}

func TestCorrelate_SuppressesDuplicateFingerprints(t *testing.T) {
	s := New(3, time.Minute, nil)
	a := serviceAnomaly("req-1")

	assert.Nil(t, s.Correlate(a))
	assert.Nil(t, s.Correlate(a), "an identical fingerprint within TTL must be suppressed, not windowed")
	assert.Nil(t, s.Correlate(a))

	// Window only ever saw one anomaly (the rest were suppressed), so a
	// fourth identical one still won't fire at threshold 3.
	assert.Nil(t, s.Correlate(a))
}

func TestPendingIncident_CancelAllowsRetryWithoutLosingEvidence(t *testing.T) {
	s := New(2, time.Minute, nil)
	s.Correlate(serviceAnomaly("req-1"))
	pending := s.Correlate(serviceAnomaly("req-2"))
	require.NotNil(t, pending)

	pending.Cancel()

	retried := s.Correlate(serviceAnomaly("req-3"))
	require.NotNil(t, retried, "canceling must leave the window over-threshold so the next arrival refires immediately")
	assert.Len(t, retried.Incident.Evidence, 3)
}

func TestPendingIncident_ConfirmClearsWindow(t *testing.T) {
	s := New(2, time.Minute, nil)
	s.Correlate(serviceAnomaly("req-1"))
	pending := s.Correlate(serviceAnomaly("req-2"))
	require.NotNil(t, pending)

	pending.Confirm()

	assert.Nil(t, s.Correlate(serviceAnomaly("req-3")), "window should start fresh after confirm, needing threshold anomalies again")
}
