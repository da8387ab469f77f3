package correlator

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
)

// DefaultDedupTTL is how long a suppression key stays hot after its
// last sighting (spec §4.3).
const DefaultDedupTTL = 900 * time.Second

// Fingerprint hashes the attributes that identify "the same kind of
// anomaly" for deduplication purposes: ship_id, domain, service,
// anomaly_type, and device_id when present. Ported from
// deduplication.py's compute_fingerprint — MD5 is used for grouping,
// not for any security property.
func Fingerprint(anomaly eventmodels.AnomalyEnriched) string {
	parts := []string{anomaly.ShipID, string(anomaly.Domain), anomaly.Service, anomaly.AnomalyType}
	if anomaly.DeviceID != "" {
		parts = append(parts, anomaly.DeviceID)
	}
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])[:16]
}

// SuppressKey appends severity to a fingerprint so distinct severities
// of otherwise-identical anomalies still each get their own incident.
func SuppressKey(anomaly eventmodels.AnomalyEnriched) string {
	return Fingerprint(anomaly) + ":" + string(anomaly.Severity)
}

// DedupCache is a TTL-expiring set of recently-seen suppression keys.
type DedupCache struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
}

// NewDedupCache builds a DedupCache with the given TTL (<=0 falls back
// to DefaultDedupTTL).
func NewDedupCache(ttl time.Duration) *DedupCache {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &DedupCache{ttl: ttl, seen: make(map[string]time.Time)}
}

// ShouldSuppress reports whether anomaly is a duplicate of one seen
// within the TTL window. On a miss (not suppressed) the key's
// timestamp is recorded so the next occurrence within the TTL is
// caught.
func (d *DedupCache) ShouldSuppress(anomaly eventmodels.AnomalyEnriched) bool {
	key := SuppressKey(anomaly)
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.seen[key]; ok && now.Sub(last) < d.ttl {
		return true
	}
	d.seen[key] = now
	return false
}

// SweepExpired removes every suppression entry older than the TTL,
// returning the number removed.
func (d *DedupCache) SweepExpired() int {
	now := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for key, last := range d.seen {
		if now.Sub(last) >= d.ttl {
			delete(d.seen, key)
			removed++
		}
	}
	return removed
}
