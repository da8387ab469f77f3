package eventmodels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresent_RejectsEmptyAndUnknown(t *testing.T) {
	assert.False(t, Present(""))
	assert.False(t, Present("unknown"))
	assert.False(t, Present("Unknown-Ship"))
	assert.True(t, Present("ship-voyager"))
}

func TestRawEvent_MetadataShipIDPrecedence(t *testing.T) {
	r := RawEvent{
		ShipID:   "unknown",
		Metadata: []byte(`{"ship_id":"ship-voyager","device_id":"dev-1"}`),
	}
	assert.Equal(t, "ship-voyager", r.MetadataShipID())
	assert.Equal(t, "dev-1", r.MetadataDeviceID())
}

func TestRawEvent_MetadataAbsent(t *testing.T) {
	r := RawEvent{ShipID: "ship-voyager"}
	assert.Equal(t, "", r.MetadataShipID())
}

func TestResolveDomain_PrefersExplicitDomain(t *testing.T) {
	r := RawEvent{Domain: DomainSecurity, Service: "engine-monitor"}
	assert.Equal(t, DomainSecurity, r.ResolveDomain())
}

func TestResolveDomain_InfersFromServiceKeyword(t *testing.T) {
	r := RawEvent{Service: "engine-monitor"}
	assert.Equal(t, DomainSystem, r.ResolveDomain())
}

func TestResolveDomain_FallsBackToApp(t *testing.T) {
	r := RawEvent{Service: "billing-worker"}
	assert.Equal(t, DomainApp, r.ResolveDomain())
}
