// Package registry resolves ship_id identity against the external device
// registry service, with the fallback chain spec.md §4.1/§4.7 requires:
// a usable ship_id already on the event wins outright; otherwise a
// registry lookup by hostname; otherwise a hostname-derived guess;
// otherwise eventmodels.UnknownShipID. Grounded on the plain net/http
// client shape used for mira_provider_ollama.go and the weaviate client's
// timeout/health-check idioms, since no pack repo carries a device
// registry client of its own.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/tracking"
)

// Mapping is the device registry's view of one hostname.
type Mapping struct {
	ShipID   string `json:"ship_id"`
	DeviceID string `json:"device_id"`
}

type lookupResponse struct {
	Success bool    `json:"success"`
	Mapping Mapping `json:"mapping"`
}

// Client resolves ship_id/device_id identity, backed by an in-process LRU
// (positive results only, spec §4.7) and an optional shared second tier.
type Client struct {
	baseURL string
	http    *http.Client
	logger  tracking.Logger

	local  *lruCache
	shared SharedCache
}

// SharedCache is the optional cross-replica second tier (spec's
// [EXPANSION] §4.7). A nil SharedCache disables the tier entirely; the
// in-process LRU alone satisfies the base contract.
type SharedCache interface {
	Get(ctx context.Context, hostname string) (Mapping, bool)
	Set(ctx context.Context, hostname string, mapping Mapping)
}

// New builds a registry client with a 5s request timeout and no retries
// on the hot path (spec §4.7: the caller applies the fallback chain
// instead of retrying). cacheSize/cacheTTL size the in-process LRU.
func New(baseURL string, timeout time.Duration, cacheSize int, cacheTTL time.Duration, shared SharedCache, logger tracking.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		local:   newLRUCache(cacheSize, cacheTTL),
		shared:  shared,
	}
}

// Lookup queries the registry for hostname, checking the in-process LRU
// and then the optional shared tier before issuing an HTTP request. Only
// a successful mapping is cached; a miss or error is never cached (spec
// §4.7: "negative results are not cached").
func (c *Client) Lookup(ctx context.Context, hostname string) (Mapping, bool) {
	if hostname == "" {
		return Mapping{}, false
	}
	if m, ok := c.local.get(hostname); ok {
		return m, true
	}
	if c.shared != nil {
		if m, ok := c.shared.Get(ctx, hostname); ok {
			c.local.set(hostname, m)
			return m, true
		}
	}

	m, ok := c.fetch(ctx, hostname)
	if !ok {
		return Mapping{}, false
	}
	c.local.set(hostname, m)
	if c.shared != nil {
		c.shared.Set(ctx, hostname, m)
	}
	return m, true
}

// fetch's span has no error field: a registry miss is reported as
// (Mapping{}, false), not an error (spec §4.7 treats a miss as an
// expected outcome).
func (c *Client) fetch(ctx context.Context, hostname string) (Mapping, bool) {
	ctx, span := tracking.StartSpan(ctx, "registry", "lookup")
	defer span.End()

	url := fmt.Sprintf("%s/lookup/%s", c.baseURL, hostname)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Mapping{}, false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("registry lookup failed", "hostname", hostname, "error", err)
		}
		return Mapping{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Mapping{}, false
	}
	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if c.logger != nil {
			c.logger.Warn("registry response decode failed", "hostname", hostname, "error", err)
		}
		return Mapping{}, false
	}
	if !out.Success || out.Mapping.ShipID == "" {
		return Mapping{}, false
	}
	return out.Mapping, true
}

// Resolve runs the full fallback chain against one raw event: a usable
// ship_id already on the event (top-level, then metadata) wins outright;
// otherwise a registry lookup by hostname; otherwise a hostname-derived
// guess; otherwise eventmodels.UnknownShipID. deviceID is resolved
// alongside ship_id from whichever of the same sources carries it;
// it may be "" if no source supplies one.
func (c *Client) Resolve(ctx context.Context, event eventmodels.RawEvent) (shipID, deviceID string, source eventmodels.ResolutionSource) {
	deviceID = firstPresent(event.DeviceID, event.MetadataDeviceID())

	if eventmodels.Present(event.ShipID) {
		return event.ShipID, deviceID, eventmodels.ResolutionOriginalField
	}
	if meta := event.MetadataShipID(); eventmodels.Present(meta) {
		return meta, deviceID, eventmodels.ResolutionMetadataField
	}

	hostname := event.Hostname
	if hostname == "" {
		hostname = event.SourceHost
	}
	if hostname == "" {
		return eventmodels.UnknownShipID, deviceID, eventmodels.ResolutionNoHostname
	}

	if m, ok := c.Lookup(ctx, hostname); ok {
		if deviceID == "" {
			deviceID = m.DeviceID
		}
		return m.ShipID, deviceID, eventmodels.ResolutionRegistry
	}

	return deriveShipID(hostname), deviceID, eventmodels.ResolutionHostnameFallback
}

func firstPresent(values ...string) string {
	for _, v := range values {
		if eventmodels.Present(v) {
			return v
		}
	}
	return ""
}

// deriveShipID guesses a ship_id from a hostname when the registry has no
// mapping: split on "-" and suffix the first token with "-ship"
// ("dhruv-system-01" -> "dhruv-ship"); a hostname with no "-" is itself
// suffixed with "-ship" ("dhruv" -> "dhruv-ship").
func deriveShipID(hostname string) string {
	parts := strings.Split(hostname, "-")
	return parts[0] + "-ship"
}
