package correlator

import (
	"fmt"
	"time"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
)

// buildIncident constructs an IncidentCreated from a fired window's
// anomaly snapshot. Severity is the max over the evidence (stable
// tie-break per eventmodels.MaxSeverity); tracking_id is the first
// contributing anomaly's, with every contributor's id preserved in
// meta.tracking_ids (spec §4.3).
func buildIncident(shipID string, domain eventmodels.Domain, anomalies []eventmodels.AnomalyEnriched, firedAt time.Time) eventmodels.IncidentCreated {
	sevs := make([]eventmodels.Severity, len(anomalies))
	trackingIDs := make([]string, len(anomalies))
	detectorSet := make(map[string]struct{})
	evidence := make([]eventmodels.EvidenceItem, len(anomalies))

	for i, a := range anomalies {
		sevs[i] = a.Severity
		trackingIDs[i] = a.TrackingID
		detectorSet[a.Detector] = struct{}{}
		evidence[i] = eventmodels.EvidenceItem{
			TrackingID: a.TrackingID,
			TS:         a.TS.Format(time.RFC3339Nano),
			Detector:   a.Detector,
			Score:      a.Score,
			Msg:        a.Msg,
		}
	}

	detectors := make([]string, 0, len(detectorSet))
	for d := range detectorSet {
		detectors = append(detectors, d)
	}

	severity := eventmodels.MaxSeverity(sevs)
	primaryTrackingID := trackingIDs[0]
	incidentID := fmt.Sprintf("INC-%s-%s-%d", shipID, domain, firedAt.Unix())

	service := anomalies[0].Service
	metricName := anomalies[0].MetricName
	for _, a := range anomalies {
		if metricName != "" {
			break
		}
		metricName = a.MetricName
	}

	return eventmodels.IncidentCreated{
		Envelope:     eventmodels.NewEnvelope(primaryTrackingID, firedAt),
		IncidentID:   incidentID,
		IncidentType: domain,
		ShipID:       shipID,
		Severity:     severity,
		Service:      service,
		MetricName:   metricName,
		Summary:      fmt.Sprintf("%d anomalies detected in %s", len(anomalies), domain),
		Status:       eventmodels.IncidentOpen,
		Evidence:     evidence,
		Meta: eventmodels.IncidentMeta{
			TrackingIDs:    trackingIDs,
			Detectors:      detectors,
			WindowSizeSecs: int(eventmodels.WindowDuration(domain).Seconds()),
		},
	}
}
