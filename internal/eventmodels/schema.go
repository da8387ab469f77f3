// Package eventmodels defines the wire types shared by every stage of the
// pipeline: the schema envelope, the domain/severity enumerations, and the
// anomaly/incident records that travel across the bus subjects in spec §6.
package eventmodels

import (
	"fmt"
	"time"
)

// SchemaVersion is the only envelope version this build recognizes. Any
// record carrying a different value must be dead-lettered, never coerced
// (spec invariant ii).
const SchemaVersion = "3.0"

// Envelope is embedded in every record that crosses the bus.
type Envelope struct {
	SchemaVersion string    `json:"schema_version"`
	TrackingID    string    `json:"tracking_id"`
	TS            time.Time `json:"ts"`
}

// Valid reports whether the envelope carries a recognized schema version
// and a non-empty tracking id.
func (e Envelope) Valid() bool {
	return e.SchemaVersion == SchemaVersion && e.TrackingID != ""
}

// NewEnvelope stamps the current schema version and timestamp onto a
// propagated tracking id.
func NewEnvelope(trackingID string, ts time.Time) Envelope {
	return Envelope{
		SchemaVersion: SchemaVersion,
		TrackingID:    trackingID,
		TS:            ts.UTC(),
	}
}

// Domain is the high-level system area used for correlation windowing and
// routing (spec §3).
type Domain string

const (
	DomainComms     Domain = "comms"
	DomainNet       Domain = "net"
	DomainSystem    Domain = "system"
	DomainApp       Domain = "app"
	DomainSecurity  Domain = "security"
	DomainSatellite Domain = "satellite"
)

// ValidDomain reports whether d is one of the six recognized domains.
func ValidDomain(d Domain) bool {
	switch d {
	case DomainComms, DomainNet, DomainSystem, DomainApp, DomainSecurity, DomainSatellite:
		return true
	default:
		return false
	}
}

// Severity is a totally-ordered enumeration; priority values back the
// max-aggregation used to compute incident severity (spec invariant v).
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Priority maps a severity to its numeric rank. An unrecognized or empty
// severity defaults to the lowest priority rather than panicking or
// comparing against a null — this is the null-safe comparison spec §9 and
// boundary (e) require.
func Priority(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 1
	}
}

// NormalizeSeverity defaults a missing/unrecognized severity to low,
// per spec invariant (iv) — severity must never be null downstream.
func NormalizeSeverity(s Severity) Severity {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return s
	default:
		return SeverityLow
	}
}

// MaxSeverity returns the severity with the highest priority among sevs.
// On ties the first occurrence wins, matching the stable tie-break spec
// §4.3 requires for incident severity computation. Returns SeverityLow for
// an empty slice (never nil-panics on an empty evidence list upstream).
func MaxSeverity(sevs []Severity) Severity {
	best := SeverityLow
	bestPriority := -1
	for _, s := range sevs {
		ns := NormalizeSeverity(s)
		p := Priority(ns)
		if p > bestPriority {
			bestPriority = p
			best = ns
		}
	}
	return best
}

// DomainWindowSeconds are the default correlation window durations by
// domain (spec §4.3).
var DomainWindowSeconds = map[Domain]int{
	DomainNet:       300,
	DomainComms:     300,
	DomainSystem:    600,
	DomainApp:       1200,
	DomainSecurity:  600,
	DomainSatellite: 300,
}

// DefaultWindowSeconds is used for any domain absent from DomainWindowSeconds.
const DefaultWindowSeconds = 900

// WindowDuration returns the correlation window for domain d.
func WindowDuration(d Domain) time.Duration {
	if secs, ok := DomainWindowSeconds[d]; ok {
		return time.Duration(secs) * time.Second
	}
	return time.Duration(DefaultWindowSeconds) * time.Second
}

// Subjects used on the bus (spec §6).
const (
	SubjectLogsRaw           = "logs.raw"
	SubjectMetricsRaw        = "metrics.raw"
	SubjectAnomalyDetected   = "anomaly.detected"
	SubjectAnomalyEnriched   = "anomaly.enriched"
	SubjectIncidentsCreated  = "incidents.created"
	SubjectIncidentsEnriched = "incidents.enriched"
)

// DeadLetterSubject returns the dead-letter subject for a failed original
// subject, e.g. "deadletter.anomaly.detected".
func DeadLetterSubject(originalSubject string) string {
	return fmt.Sprintf("deadletter.%s", originalSubject)
}

// ResolutionSource records how ship_id/device_id identity was resolved,
// for debugging (spec §4.1).
type ResolutionSource string

const (
	ResolutionOriginalField   ResolutionSource = "original_field"
	ResolutionMetadataField   ResolutionSource = "metadata_field"
	ResolutionRegistry        ResolutionSource = "registry"
	ResolutionHostnameFallback ResolutionSource = "hostname_fallback"
	ResolutionNoHostname      ResolutionSource = "no_hostname"
)

// UnknownShipID is assigned only after every resolution strategy fails
// (spec invariant iii).
const UnknownShipID = "unknown-ship"
