package correlator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
)

func dedupAnomaly(severity eventmodels.Severity) eventmodels.AnomalyEnriched {
	return eventmodels.AnomalyEnriched{
		AnomalyDetected: eventmodels.AnomalyDetected{
			ShipID:      "dhruv-ship",
			Domain:      eventmodels.DomainSystem,
			Service:     "engine-monitor",
			AnomalyType: "log_high",
			Severity:    severity,
		},
	}
}

func TestFingerprint_StableForSameAttributes(t *testing.T) {
	a := Fingerprint(dedupAnomaly(eventmodels.SeverityHigh))
	b := Fingerprint(dedupAnomaly(eventmodels.SeverityHigh))
	assert.Equal(t, a, b)
}

func TestSuppressKey_DifferentSeveritiesProduceDifferentKeys(t *testing.T) {
	high := SuppressKey(dedupAnomaly(eventmodels.SeverityHigh))
	critical := SuppressKey(dedupAnomaly(eventmodels.SeverityCritical))
	assert.NotEqual(t, high, critical)
}

func TestDedupCache_SuppressesWithinTTL(t *testing.T) {
	c := NewDedupCache(time.Minute)
	a := dedupAnomaly(eventmodels.SeverityHigh)

	assert.False(t, c.ShouldSuppress(a))
	assert.True(t, c.ShouldSuppress(a))
}

func TestDedupCache_AllowsAgainAfterTTL(t *testing.T) {
	c := NewDedupCache(10 * time.Millisecond)
	a := dedupAnomaly(eventmodels.SeverityHigh)

	assert.False(t, c.ShouldSuppress(a))
	time.Sleep(20 * time.Millisecond)
	assert.False(t, c.ShouldSuppress(a))
}

func TestDedupCache_SweepExpiredRemovesStaleEntries(t *testing.T) {
	c := NewDedupCache(10 * time.Millisecond)
	c.ShouldSuppress(dedupAnomaly(eventmodels.SeverityHigh))
	time.Sleep(20 * time.Millisecond)

	removed := c.SweepExpired()
	assert.Equal(t, 1, removed)
}
