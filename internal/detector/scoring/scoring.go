// Package scoring implements the pluggable metric-detector interface
// spec.md §4.1 describes: fit(window), score(sample) -> (score,
// severity). Variants share one output contract and are selected by
// metric name via a configuration table (internal/detector's
// newDetectorForMetric), so the correlator and enricher downstream never need
// to know which variant produced a given score.
package scoring

import (
	"math"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
)

// Detector scores one metric sample against a rolling window of prior
// samples for the same metric.
type Detector interface {
	// Fit absorbs a new observed value into the detector's rolling state.
	Fit(value float64)
	// Score evaluates value against the current rolling state, returning
	// a score in [0,1] and the severity band it maps to.
	Score(value float64) (float64, eventmodels.Severity)
}

// severityForScore buckets a 0..1 score using the same thresholds
// internal/detector's log-severity score map (severity.go) uses, so metric- and log-derived
// anomalies carry comparable severities (spec §4.1: "score is a
// deterministic map from severity").
func severityForScore(score float64) eventmodels.Severity {
	switch {
	case score >= 0.95:
		return eventmodels.SeverityCritical
	case score >= 0.85:
		return eventmodels.SeverityHigh
	case score >= 0.7:
		return eventmodels.SeverityMedium
	default:
		return eventmodels.SeverityLow
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 { return math.Abs(v) }
