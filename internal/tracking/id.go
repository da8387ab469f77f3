// Package tracking mints and propagates the opaque tracking_id that
// spec §4.6 requires to appear unchanged on every record derived from a
// given raw ingest event, and binds it to a per-task logging context.
package tracking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID mints a fresh, URL-safe, prefixed tracking identifier, e.g.
// "req-1718020000123456-3fa85f64". It is assigned at the earliest point a
// raw event enters the system (spec §4.6).
func NewID() string {
	return fmt.Sprintf("req-%d-%s", time.Now().UnixMicro(), uuid.New().String()[:8])
}

// OrDefault returns id if non-empty, otherwise mints a fresh one. Used by
// the detector when an inbound record already carries a tracking_id
// (spec §4.1: "if absent, the detector mints a fresh opaque identifier").
func OrDefault(id string) string {
	if id != "" {
		return id
	}
	return NewID()
}
