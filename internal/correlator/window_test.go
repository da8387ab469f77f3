package correlator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
)

func anomalyFor(shipID string, domain eventmodels.Domain) eventmodels.AnomalyEnriched {
	return eventmodels.AnomalyEnriched{
		AnomalyDetected: eventmodels.AnomalyDetected{
			Envelope: eventmodels.NewEnvelope("req-x", time.Now()),
			ShipID:   shipID,
			Domain:   domain,
			Severity: eventmodels.SeverityHigh,
		},
	}
}

func TestManager_FiresOnlyAtThreshold(t *testing.T) {
	m := NewManager(3)

	_, fired := m.Add("ship-1", eventmodels.DomainSystem, anomalyFor("ship-1", eventmodels.DomainSystem))
	assert.False(t, fired)
	_, fired = m.Add("ship-1", eventmodels.DomainSystem, anomalyFor("ship-1", eventmodels.DomainSystem))
	assert.False(t, fired)

	snapshot, fired := m.Add("ship-1", eventmodels.DomainSystem, anomalyFor("ship-1", eventmodels.DomainSystem))
	require.True(t, fired)
	assert.Len(t, snapshot, 3)
}

func TestManager_DifferentDomainsAreIndependentPartitions(t *testing.T) {
	m := NewManager(2)
	_, fired := m.Add("ship-1", eventmodels.DomainSystem, anomalyFor("ship-1", eventmodels.DomainSystem))
	assert.False(t, fired)
	_, fired = m.Add("ship-1", eventmodels.DomainNet, anomalyFor("ship-1", eventmodels.DomainNet))
	assert.False(t, fired, "a different domain must not count toward the system partition's threshold")
}

func TestManager_ConfirmRetainsAnomaliesAddedAfterSnapshot(t *testing.T) {
	m := NewManager(2)
	m.Add("ship-1", eventmodels.DomainSystem, anomalyFor("ship-1", eventmodels.DomainSystem))
	snapshot, fired := m.Add("ship-1", eventmodels.DomainSystem, anomalyFor("ship-1", eventmodels.DomainSystem))
	require.True(t, fired)

	// A new anomaly arrives while the publish is in flight.
	_, firedAgain := m.Add("ship-1", eventmodels.DomainSystem, anomalyFor("ship-1", eventmodels.DomainSystem))
	assert.False(t, firedAgain, "a firing window must not re-trigger until confirmed or canceled")

	m.Confirm("ship-1", eventmodels.DomainSystem, len(snapshot))

	// The window should now hold exactly the one anomaly that arrived
	// mid-publish, one short of the threshold.
	_, fired = m.Add("ship-1", eventmodels.DomainSystem, anomalyFor("ship-1", eventmodels.DomainSystem))
	assert.True(t, fired)
}

func TestManager_CancelRetriesWithSameAndNewEvidence(t *testing.T) {
	m := NewManager(2)
	m.Add("ship-1", eventmodels.DomainSystem, anomalyFor("ship-1", eventmodels.DomainSystem))
	_, fired := m.Add("ship-1", eventmodels.DomainSystem, anomalyFor("ship-1", eventmodels.DomainSystem))
	require.True(t, fired)

	m.Cancel("ship-1", eventmodels.DomainSystem)

	snapshot, fired := m.Add("ship-1", eventmodels.DomainSystem, anomalyFor("ship-1", eventmodels.DomainSystem))
	require.True(t, fired, "canceling must allow an immediate re-trigger since the window was never cleared")
	assert.Len(t, snapshot, 3)
}

func TestManager_SweepExpiredDiscardsStaleBelowThresholdWindows(t *testing.T) {
	m := NewManager(10)
	m.Add("ship-1", eventmodels.DomainNet, anomalyFor("ship-1", eventmodels.DomainNet))
	w := m.windows[WindowKey("ship-1", eventmodels.DomainNet)]
	w.createdAt = time.Now().Add(-time.Hour)

	discarded := m.SweepExpired()
	assert.Equal(t, 1, discarded[WindowKey("ship-1", eventmodels.DomainNet)])
	assert.Equal(t, 0, m.ActiveWindowCount())
}

func TestManager_SweepExpiredSkipsFiringWindows(t *testing.T) {
	m := NewManager(1)
	_, fired := m.Add("ship-1", eventmodels.DomainNet, anomalyFor("ship-1", eventmodels.DomainNet))
	require.True(t, fired)
	w := m.windows[WindowKey("ship-1", eventmodels.DomainNet)]
	w.createdAt = time.Now().Add(-time.Hour)

	discarded := m.SweepExpired()
	assert.Empty(t, discarded)
	assert.Equal(t, 1, m.ActiveWindowCount())
}
