// Package correlator implements the Correlator: it groups enriched
// anomalies into per-(ship_id, domain) time windows, deduplicates by
// fingerprint, and fires an incident once a window's anomaly count
// reaches the correlation threshold. Grounded on
// original_source/services/correlation-service/{windowing.py,
// deduplication.py,correlation_service.py}, translated into the
// teacher's mutex-guarded-map idiom (pkg/cache/valkey_single.go).
package correlator

import (
	"sync"
	"time"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/metrics"
)

// DefaultThreshold is the number of anomalies a window must accumulate
// before it fires an incident (spec §4.3).
const DefaultThreshold = 3

// window holds the live anomalies accumulated for one (ship_id, domain)
// partition. firing is set between a threshold trigger and the
// publish outcome being known, so anomalies arriving mid-publish are
// not lost and a failed publish can be retried with the same evidence
// plus whatever arrived since (spec §4.3: "publish failure -> window is
// NOT cleared").
type window struct {
	domain    eventmodels.Domain
	anomalies []eventmodels.AnomalyEnriched
	createdAt time.Time
	firing    bool
}

// Manager owns every live correlation window, keyed by "ship_id:domain".
type Manager struct {
	mu        sync.Mutex
	windows   map[string]*window
	threshold int
}

// NewManager builds a Manager with the given correlation threshold
// (<=0 falls back to DefaultThreshold).
func NewManager(threshold int) *Manager {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Manager{windows: make(map[string]*window), threshold: threshold}
}

// WindowKey builds the partition key a window is stored and looked up
// under.
func WindowKey(shipID string, domain eventmodels.Domain) string {
	return shipID + ":" + string(domain)
}

// Add appends anomaly to its partition's window. If the window is
// already firing (a prior trigger's publish has not yet been confirmed
// or failed), the anomaly is appended without re-triggering — the
// in-flight publish attempt will carry it once confirmed or retried.
// Otherwise, once the partition's count reaches the configured
// threshold, Add returns a snapshot of every anomaly currently in the
// window and fired=true; the caller must follow up with either
// Confirm (on successful publish) or Cancel (on failure).
func (m *Manager) Add(shipID string, domain eventmodels.Domain, anomaly eventmodels.AnomalyEnriched) (snapshot []eventmodels.AnomalyEnriched, fired bool) {
	key := WindowKey(shipID, domain)

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok {
		w = &window{domain: domain, createdAt: time.Now()}
		m.windows[key] = w
	}
	w.anomalies = append(w.anomalies, anomaly)

	if w.firing || len(w.anomalies) < m.threshold {
		return nil, false
	}

	w.firing = true
	out := make([]eventmodels.AnomalyEnriched, len(w.anomalies))
	copy(out, w.anomalies)
	return out, true
}

// Confirm clears the first snapshotLen anomalies from the partition's
// window after a successful publish, preserving any anomalies that
// arrived after the snapshot was taken, and clears the firing flag.
func (m *Manager) Confirm(shipID string, domain eventmodels.Domain, snapshotLen int) {
	key := WindowKey(shipID, domain)

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok {
		return
	}
	if snapshotLen >= len(w.anomalies) {
		w.anomalies = nil
	} else {
		remaining := make([]eventmodels.AnomalyEnriched, len(w.anomalies)-snapshotLen)
		copy(remaining, w.anomalies[snapshotLen:])
		w.anomalies = remaining
	}
	w.firing = false
	w.createdAt = time.Now()
}

// Cancel clears the firing flag without discarding any anomalies, so
// the next arrival (or the next sweep) re-evaluates the same
// accumulated evidence against the threshold.
func (m *Manager) Cancel(shipID string, domain eventmodels.Domain) {
	key := WindowKey(shipID, domain)

	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.windows[key]; ok {
		w.firing = false
	}
}

// SweepExpired discards windows that have aged past their domain's
// window duration without reaching threshold, returning the number of
// discarded anomalies per partition key for logging. Windows currently
// firing are left alone so an in-flight publish retry is never
// silently dropped.
func (m *Manager) SweepExpired() map[string]int {
	now := time.Now()
	discarded := make(map[string]int)

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, w := range m.windows {
		if w.firing || len(w.anomalies) == 0 {
			continue
		}
		if now.Sub(w.createdAt) > eventmodels.WindowDuration(w.domain) {
			discarded[key] = len(w.anomalies)
			metrics.WindowsExpiredTotal.WithLabelValues(string(w.domain)).Inc()
			delete(m.windows, key)
		}
	}
	return discarded
}

// ActiveWindowCount reports how many partitions currently hold state,
// for the gauge metric.
func (m *Manager) ActiveWindowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// ActiveWindowCountByDomain reports how many partitions currently hold
// state, broken down by domain, for the per-domain gauge metric.
func (m *Manager) ActiveWindowCountByDomain() map[eventmodels.Domain]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[eventmodels.Domain]int)
	for _, w := range m.windows {
		counts[w.domain]++
	}
	return counts
}
