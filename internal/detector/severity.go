// Package detector implements the Anomaly Detector: it consumes raw
// ingest records on logs.raw/metrics.raw and emits AnomalyDetected on
// anomaly.detected, per spec.md §4.1. Log scoring, identity resolution
// and metric scoring are grounded on
// original_source/services/anomaly-detection's V3 integration test
// (severity/score mapping, tracking_id propagation) and
// internal/registry for ship_id resolution.
package detector

import (
	"strings"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
)

// logSeverityScore is the deterministic severity -> score map spec.md
// §4.1 mandates for log-derived anomalies.
var logSeverityScore = map[eventmodels.Severity]float64{
	eventmodels.SeverityCritical: 0.95,
	eventmodels.SeverityHigh:     0.85,
	eventmodels.SeverityMedium:   0.7,
	eventmodels.SeverityLow:      0.5,
}

// severityForLevel maps a log record's level field to a severity.
// Anything other than the four recognized levels defaults to low.
func severityForLevel(level string) eventmodels.Severity {
	switch strings.ToUpper(level) {
	case "CRITICAL":
		return eventmodels.SeverityCritical
	case "ERROR":
		return eventmodels.SeverityHigh
	case "WARN", "WARNING":
		return eventmodels.SeverityMedium
	default:
		return eventmodels.SeverityLow
	}
}

// isDroppedLevel reports whether level is one of the levels that never
// produce an anomaly regardless of message content
// (spec §4.1: "levels INFO|DEBUG|TRACE ... are dropped").
func isDroppedLevel(level string) bool {
	switch strings.ToUpper(level) {
	case "INFO", "DEBUG", "TRACE":
		return true
	default:
		return false
	}
}

// scoreForSeverity returns the deterministic score for a log-derived
// severity, defaulting to the low-severity score for anything
// unrecognized (the null-safe fallback spec §9 requires).
func scoreForSeverity(sev eventmodels.Severity) float64 {
	if score, ok := logSeverityScore[sev]; ok {
		return score
	}
	return logSeverityScore[eventmodels.SeverityLow]
}
