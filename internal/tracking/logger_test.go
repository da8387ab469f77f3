package tracking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID_IsUniqueAndPrefixed(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^req-\d+-[0-9a-f]{8}$`, a)
}

func TestOrDefault_KeepsExisting(t *testing.T) {
	assert.Equal(t, "existing-id", OrDefault("existing-id"))
	assert.NotEmpty(t, OrDefault(""))
}

func TestBound_CarriesTrackingIDThroughContext(t *testing.T) {
	ctx := WithTrackingID(context.Background(), "req-123")
	assert.Equal(t, "req-123", TrackingIDFromContext(ctx))

	logger := New("info", FormatJSON)
	bound := Bound(ctx, logger)
	// Smoke test: must not panic when emitting through the bound logger.
	bound.Info("test event", "k", "v")
}
