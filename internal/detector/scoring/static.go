package scoring

import "github.com/ilodestar/aiops-naas/internal/eventmodels"

// Static scores a sample purely against a fixed threshold, ignoring any
// history — the simplest variant, useful for metrics whose "bad" range
// is a known constant rather than something learned from trend.
type Static struct {
	threshold float64
	ceiling   float64
}

// NewStatic returns a Static detector that reaches score 1.0 once value
// reaches ceiling; values below threshold score 0.
func NewStatic(threshold, ceiling float64) *Static {
	if ceiling <= threshold {
		ceiling = threshold + 1
	}
	return &Static{threshold: threshold, ceiling: ceiling}
}

// Fit is a no-op: Static carries no rolling state.
func (s *Static) Fit(float64) {}

func (s *Static) Score(value float64) (float64, eventmodels.Severity) {
	if value <= s.threshold {
		return 0, severityForScore(0)
	}
	score := clamp01((value - s.threshold) / (s.ceiling - s.threshold))
	return score, severityForScore(score)
}
