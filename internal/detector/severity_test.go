package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
)

func TestSeverityForLevel_MapsKnownLevels(t *testing.T) {
	assert.Equal(t, eventmodels.SeverityCritical, severityForLevel("CRITICAL"))
	assert.Equal(t, eventmodels.SeverityHigh, severityForLevel("ERROR"))
	assert.Equal(t, eventmodels.SeverityMedium, severityForLevel("WARN"))
	assert.Equal(t, eventmodels.SeverityLow, severityForLevel("anything-else"))
}

func TestIsDroppedLevel_DropsNoiseLevelsOnly(t *testing.T) {
	assert.True(t, isDroppedLevel("INFO"))
	assert.True(t, isDroppedLevel("debug"))
	assert.True(t, isDroppedLevel("TRACE"))
	assert.False(t, isDroppedLevel("ERROR"))
}

func TestScoreForSeverity_MatchesDeterministicMap(t *testing.T) {
	assert.Equal(t, 0.95, scoreForSeverity(eventmodels.SeverityCritical))
	assert.Equal(t, 0.85, scoreForSeverity(eventmodels.SeverityHigh))
	assert.Equal(t, 0.7, scoreForSeverity(eventmodels.SeverityMedium))
	assert.Equal(t, 0.5, scoreForSeverity(eventmodels.SeverityLow))
}
