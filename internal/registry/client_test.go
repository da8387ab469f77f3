package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
)

func fakeRegistry(t *testing.T, known map[string]Mapping) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/lookup/", func(w http.ResponseWriter, r *http.Request) {
		hostname := r.URL.Path[len("/lookup/"):]
		m, ok := known[hostname]
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Success bool    `json:"success"`
			Mapping Mapping `json:"mapping"`
		}{Success: ok, Mapping: m})
	})
	return httptest.NewServer(mux)
}

func TestLookup_CachesPositiveResultOnly(t *testing.T) {
	srv := fakeRegistry(t, map[string]Mapping{"ubuntu-vm-01": {ShipID: "ship-dhruv", DeviceID: "dev-1"}})
	defer srv.Close()

	c := New(srv.URL, time.Second, 1024, time.Minute, nil, nil)

	m, ok := c.Lookup(context.Background(), "ubuntu-vm-01")
	require.True(t, ok)
	assert.Equal(t, "ship-dhruv", m.ShipID)

	srv.Close() // further requests would fail; a cache hit must not need the server
	m2, ok2 := c.Lookup(context.Background(), "ubuntu-vm-01")
	require.True(t, ok2)
	assert.Equal(t, "ship-dhruv", m2.ShipID)
}

func TestLookup_MissIsNeverCached(t *testing.T) {
	srv := fakeRegistry(t, map[string]Mapping{})
	defer srv.Close()

	c := New(srv.URL, time.Second, 1024, time.Minute, nil, nil)
	_, ok := c.Lookup(context.Background(), "nowhere")
	assert.False(t, ok)
	_, ok = c.local.get("nowhere")
	assert.False(t, ok)
}

func TestResolve_OriginalFieldWins(t *testing.T) {
	c := New("http://unused.invalid", time.Second, 8, time.Minute, nil, nil)
	shipID, deviceID, source := c.Resolve(context.Background(), eventmodels.RawEvent{ShipID: "ship-dhruv", DeviceID: "dev-1", Hostname: "any-host"})
	assert.Equal(t, "ship-dhruv", shipID)
	assert.Equal(t, "dev-1", deviceID)
	assert.Equal(t, eventmodels.ResolutionOriginalField, source)
}

func TestResolve_MetadataFieldBeatsRegistry(t *testing.T) {
	c := New("http://unused.invalid", time.Second, 8, time.Minute, nil, nil)
	event := eventmodels.RawEvent{Hostname: "host-1", Metadata: []byte(`{"ship_id":"ship-voyager","device_id":"dev-2"}`)}
	shipID, deviceID, source := c.Resolve(context.Background(), event)
	assert.Equal(t, "ship-voyager", shipID)
	assert.Equal(t, "dev-2", deviceID)
	assert.Equal(t, eventmodels.ResolutionMetadataField, source)
}

func TestResolve_FallsBackToRegistryLookup(t *testing.T) {
	srv := fakeRegistry(t, map[string]Mapping{"ubuntu-vm-01": {ShipID: "ship-dhruv", DeviceID: "dev-3"}})
	defer srv.Close()

	c := New(srv.URL, time.Second, 8, time.Minute, nil, nil)
	shipID, deviceID, source := c.Resolve(context.Background(), eventmodels.RawEvent{Hostname: "ubuntu-vm-01"})
	assert.Equal(t, "ship-dhruv", shipID)
	assert.Equal(t, "dev-3", deviceID)
	assert.Equal(t, eventmodels.ResolutionRegistry, source)
}

func TestResolve_DerivesFromHostnameWhenRegistryMisses(t *testing.T) {
	srv := fakeRegistry(t, map[string]Mapping{})
	defer srv.Close()

	c := New(srv.URL, time.Second, 8, time.Minute, nil, nil)
	shipID, _, source := c.Resolve(context.Background(), eventmodels.RawEvent{Hostname: "dhruv-system-01"})
	assert.Equal(t, "dhruv-ship", shipID)
	assert.Equal(t, eventmodels.ResolutionHostnameFallback, source)
}

func TestResolve_SingleWordHostnameGetsShipSuffix(t *testing.T) {
	srv := fakeRegistry(t, map[string]Mapping{})
	defer srv.Close()

	c := New(srv.URL, time.Second, 8, time.Minute, nil, nil)
	shipID, _, _ := c.Resolve(context.Background(), eventmodels.RawEvent{Hostname: "dhruv"})
	assert.Equal(t, "dhruv-ship", shipID)
}

func TestResolve_NoHostnameFallsBackToUnknownShip(t *testing.T) {
	c := New("http://unused.invalid", time.Second, 8, time.Minute, nil, nil)
	shipID, _, source := c.Resolve(context.Background(), eventmodels.RawEvent{})
	assert.Equal(t, eventmodels.UnknownShipID, shipID)
	assert.Equal(t, eventmodels.ResolutionNoHostname, source)
}
