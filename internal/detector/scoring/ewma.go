package scoring

import "github.com/ilodestar/aiops-naas/internal/eventmodels"

// EWMA scores a sample against an exponentially-weighted moving average,
// reacting faster to recent drift than ZScore's flat rolling window.
type EWMA struct {
	alpha     float64
	hasValue  bool
	mean      float64
	deviation float64
}

// NewEWMA returns an EWMA detector with smoothing factor alpha in (0,1];
// higher alpha weights recent samples more heavily.
func NewEWMA(alpha float64) *EWMA {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.3
	}
	return &EWMA{alpha: alpha}
}

func (e *EWMA) Fit(value float64) {
	if !e.hasValue {
		e.mean = value
		e.hasValue = true
		return
	}
	deviationFromMean := abs(value - e.mean)
	e.mean = e.alpha*value + (1-e.alpha)*e.mean
	e.deviation = e.alpha*deviationFromMean + (1-e.alpha)*e.deviation
}

func (e *EWMA) Score(value float64) (float64, eventmodels.Severity) {
	if !e.hasValue || e.deviation == 0 {
		return 0, severityForScore(0)
	}
	ratio := abs(value-e.mean) / e.deviation
	// A deviation ratio of 3 mean-absolute-deviations saturates at 1.0.
	score := clamp01(ratio / 3)
	return score, severityForScore(score)
}
