package detector

import (
	"strings"

	"github.com/ilodestar/aiops-naas/internal/detector/scoring"
)

// variantKind names a scoring.Detector implementation, used only for the
// selection table below — the wire representation and every downstream
// consumer only ever see scoring.Detector's output contract.
type variantKind int

const (
	variantZScore variantKind = iota
	variantEWMA
	variantStatic
)

// metricVariant pairs a metric-name keyword with the detector variant
// and parameters it should use (spec §4.1: "variants ... selected by
// metric name via a configuration table").
type metricVariant struct {
	keyword   string
	kind      variantKind
	threshold float64 // Static: threshold; EWMA: alpha
	ceiling   float64 // Static only
	window    int     // ZScore only
}

// metricVariantTable is consulted keyword-first; the first match wins.
// Metrics with no match fall back to a general-purpose rolling z-score.
var metricVariantTable = []metricVariant{
	{keyword: "temperature", kind: variantStatic, threshold: 90, ceiling: 110},
	{keyword: "pressure", kind: variantStatic, threshold: 95, ceiling: 120},
	{keyword: "cpu", kind: variantEWMA, threshold: 0.3},
	{keyword: "memory", kind: variantEWMA, threshold: 0.3},
	{keyword: "latency", kind: variantZScore, window: 30},
	{keyword: "rpm", kind: variantZScore, window: 30},
}

// newDetectorForMetric returns a fresh scoring.Detector for metricName,
// selected via metricVariantTable.
func newDetectorForMetric(metricName string) scoring.Detector {
	lower := strings.ToLower(metricName)
	for _, v := range metricVariantTable {
		if strings.Contains(lower, v.keyword) {
			switch v.kind {
			case variantStatic:
				return scoring.NewStatic(v.threshold, v.ceiling)
			case variantEWMA:
				return scoring.NewEWMA(v.threshold)
			default:
				return scoring.NewZScore(v.window)
			}
		}
	}
	return scoring.NewZScore(30)
}
