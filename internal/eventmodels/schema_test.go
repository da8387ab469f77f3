package eventmodels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaxSeverity_TieBreakIsStable(t *testing.T) {
	// medium, high, medium -> high (scenario 3 from spec §8).
	got := MaxSeverity([]Severity{SeverityMedium, SeverityHigh, SeverityMedium})
	assert.Equal(t, SeverityHigh, got)
}

func TestMaxSeverity_EmptyDefaultsToLow(t *testing.T) {
	assert.Equal(t, SeverityLow, MaxSeverity(nil))
}

func TestNormalizeSeverity_NullDefaultsToLow(t *testing.T) {
	// Boundary (e): severity null on input -> treated as low, never a
	// null-comparison failure downstream.
	assert.Equal(t, SeverityLow, NormalizeSeverity(""))
	assert.Equal(t, 1, Priority(""))
}

func TestPriority_Ordering(t *testing.T) {
	assert.Less(t, Priority(SeverityLow), Priority(SeverityMedium))
	assert.Less(t, Priority(SeverityMedium), Priority(SeverityHigh))
	assert.Less(t, Priority(SeverityHigh), Priority(SeverityCritical))
}

func TestEnvelope_ValidRejectsWrongSchemaVersion(t *testing.T) {
	e := Envelope{SchemaVersion: "2.0", TrackingID: "req-1", TS: time.Now()}
	assert.False(t, e.Valid())

	e2 := NewEnvelope("req-1", time.Now())
	assert.True(t, e2.Valid())
}

func TestWindowDuration_PerDomainDefaults(t *testing.T) {
	assert.Equal(t, 300*time.Second, WindowDuration(DomainNet))
	assert.Equal(t, 600*time.Second, WindowDuration(DomainSystem))
	assert.Equal(t, 1200*time.Second, WindowDuration(DomainApp))
	assert.Equal(t, 900*time.Second, WindowDuration(Domain("bogus")))
}

func TestDeadLetterSubject(t *testing.T) {
	assert.Equal(t, "deadletter.anomaly.detected", DeadLetterSubject(SubjectAnomalyDetected))
}
