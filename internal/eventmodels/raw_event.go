package eventmodels

import (
	"encoding/json"
	"strings"
)

// RawEvent is the untyped ingest record accepted on logs.raw / metrics.raw.
// Fields are deliberately loose: the detector is the first stage to impose
// structure, and upstream producers vary in which fields they populate.
type RawEvent struct {
	TrackingID string          `json:"tracking_id,omitempty"`
	Hostname   string          `json:"hostname,omitempty"`
	ShipID     string          `json:"ship_id,omitempty"`
	DeviceID   string          `json:"device_id,omitempty"`
	Service    string          `json:"service,omitempty"`
	SourceHost string          `json:"source_host,omitempty"`
	Domain     Domain          `json:"domain,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`

	// Log-shaped fields.
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`

	// Metric-shaped fields.
	MetricName  string   `json:"metric_name,omitempty"`
	MetricValue *float64 `json:"metric_value,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// metadataFields is the safe-accessor view of the opaque metadata blob:
// only these four keys are ever read out of it (spec §9 design notes).
type metadataFields struct {
	ShipID     string `json:"ship_id"`
	DeviceID   string `json:"device_id"`
	Service    string `json:"service"`
	SourceHost string `json:"source_host"`
}

// MetadataShipID returns the metadata-borne ship_id, or "" if absent.
func (r RawEvent) MetadataShipID() string {
	return r.metadata().ShipID
}

// MetadataDeviceID returns the metadata-borne device_id, or "" if absent.
func (r RawEvent) MetadataDeviceID() string {
	return r.metadata().DeviceID
}

func (r RawEvent) metadata() metadataFields {
	var m metadataFields
	if len(r.Metadata) == 0 {
		return m
	}
	_ = json.Unmarshal(r.Metadata, &m)
	return m
}

// serviceDomainKeywords maps a substring found in a service name to the
// domain it belongs to, for events that arrive without an explicit
// domain (the common case for free-form log/metric ingest). Order
// matters: the first matching keyword wins.
var serviceDomainKeywords = []struct {
	keyword string
	domain  Domain
}{
	{"comms", DomainComms},
	{"radio", DomainComms},
	{"network", DomainNet},
	{"router", DomainNet},
	{"switch", DomainNet},
	{"security", DomainSecurity},
	{"auth", DomainSecurity},
	{"firewall", DomainSecurity},
	{"satellite", DomainSatellite},
	{"vsat", DomainSatellite},
	{"gps", DomainSatellite},
	{"system", DomainSystem},
	{"engine", DomainSystem},
	{"sensor", DomainSystem},
}

// ResolveDomain returns the event's explicit domain if valid, otherwise
// infers one from the service name's keywords, otherwise falls back to
// DomainApp — every anomaly must carry a domain (spec §3's Domain
// enumeration has no "unset" member).
func (r RawEvent) ResolveDomain() Domain {
	if ValidDomain(r.Domain) {
		return r.Domain
	}
	lower := strings.ToLower(r.Service)
	for _, entry := range serviceDomainKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.domain
		}
	}
	return DomainApp
}

// Present reports whether a field value is non-empty and does not
// literally contain the string "unknown" — the safe-accessor contract
// spec §9 requires for dynamic metadata blobs.
func Present(v string) bool {
	if v == "" {
		return false
	}
	return !containsUnknown(v)
}

func containsUnknown(v string) bool {
	const needle = "unknown"
	if len(v) < len(needle) {
		return false
	}
	for i := 0; i+len(needle) <= len(v); i++ {
		if equalFoldASCII(v[i:i+len(needle)], needle) {
			return true
		}
	}
	return false
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
