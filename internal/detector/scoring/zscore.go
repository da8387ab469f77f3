package scoring

import (
	"math"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
)

// ZScore scores a sample by how many rolling standard deviations it sits
// from the rolling mean, over a bounded window of recent values. No
// library in the example pack implements rolling statistics of any kind,
// so this is built directly on the standard library rather than pulling
// in a stats dependency for four lines of arithmetic.
type ZScore struct {
	window   []float64
	capacity int
}

// NewZScore returns a ZScore detector retaining at most capacity recent
// samples for its rolling mean/stddev.
func NewZScore(capacity int) *ZScore {
	if capacity <= 1 {
		capacity = 30
	}
	return &ZScore{capacity: capacity}
}

func (z *ZScore) Fit(value float64) {
	z.window = append(z.window, value)
	if len(z.window) > z.capacity {
		z.window = z.window[len(z.window)-z.capacity:]
	}
}

func (z *ZScore) Score(value float64) (float64, eventmodels.Severity) {
	if len(z.window) < 2 {
		return 0, severityForScore(0)
	}
	mean, stddev := meanStddev(z.window)
	if stddev == 0 {
		return 0, severityForScore(0)
	}
	deviation := abs(value-mean) / stddev
	// A deviation of 4 standard deviations saturates the score at 1.0.
	score := clamp01(deviation / 4)
	return score, severityForScore(score)
}

func meanStddev(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
