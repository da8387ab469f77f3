package detector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ilodestar/aiops-naas/internal/config"
	"github.com/ilodestar/aiops-naas/internal/detector/scoring"
	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/metrics"
	"github.com/ilodestar/aiops-naas/internal/registry"
	"github.com/ilodestar/aiops-naas/internal/tracking"
)

// Service is the Anomaly Detector (spec.md §4.1): it scores raw ingest
// records and produces AnomalyDetected envelopes, resolving identity via
// the device registry and filtering known-normal log chatter via the
// allow-list watcher.
type Service struct {
	registry  *registry.Client
	allowList *config.AllowListWatcher
	logger    tracking.Logger

	mu       sync.Mutex
	detected map[string]scoring.Detector // key: ship_id + "|" + metric_name
}

// New builds a detector service. allowList may be nil, in which case no
// log record is ever suppressed as normal-operational chatter.
func New(registryClient *registry.Client, allowList *config.AllowListWatcher, logger tracking.Logger) *Service {
	return &Service{
		registry:  registryClient,
		allowList: allowList,
		logger:    logger,
		detected:  make(map[string]scoring.Detector),
	}
}

// ProcessLog scores one log-shaped raw event. A nil result with ok=false
// means the record was intentionally dropped (INFO/DEBUG/TRACE level, or
// text matching the normal-operational allow-list) — not an error.
func (s *Service) ProcessLog(ctx context.Context, raw eventmodels.RawEvent) (*eventmodels.AnomalyDetected, bool, error) {
	if isDroppedLevel(raw.Level) {
		metrics.LogRecordsDroppedTotal.WithLabelValues("level").Inc()
		return nil, false, nil
	}
	if s.allowList != nil && s.allowList.Matches(raw.Message) {
		metrics.LogRecordsDroppedTotal.WithLabelValues("allow_list").Inc()
		return nil, false, nil
	}

	trackingID := tracking.OrDefault(raw.TrackingID)
	shipID, deviceID, source := s.registry.Resolve(ctx, raw)
	severity := severityForLevel(raw.Level)

	anomaly := &eventmodels.AnomalyDetected{
		Envelope:    eventmodels.NewEnvelope(trackingID, time.Now()),
		ShipID:      shipID,
		DeviceID:    deviceID,
		Service:     raw.Service,
		Domain:      raw.ResolveDomain(),
		Detector:    "log-severity",
		Score:       scoreForSeverity(severity),
		Severity:    severity,
		AnomalyType: "log_" + string(severity),
		Msg:         raw.Message,
		RawMsg:      string(raw.Raw),
		Meta:        map[string]interface{}{"ship_id_source": string(source)},
	}
	return anomaly, true, nil
}

// ProcessMetric scores one metric-shaped raw event against the rolling
// detector variant selected for its metric name.
func (s *Service) ProcessMetric(ctx context.Context, raw eventmodels.RawEvent) (*eventmodels.AnomalyDetected, bool, error) {
	if raw.MetricValue == nil {
		return nil, false, fmt.Errorf("detector: metric event missing metric_value")
	}

	trackingID := tracking.OrDefault(raw.TrackingID)
	shipID, deviceID, source := s.registry.Resolve(ctx, raw)

	d := s.detectorFor(shipID, raw.MetricName)
	score, severity := d.Score(*raw.MetricValue)
	d.Fit(*raw.MetricValue)

	anomaly := &eventmodels.AnomalyDetected{
		Envelope:    eventmodels.NewEnvelope(trackingID, time.Now()),
		ShipID:      shipID,
		DeviceID:    deviceID,
		Service:     raw.Service,
		Domain:      raw.ResolveDomain(),
		Detector:    "metric-" + fmt.Sprint(raw.MetricName),
		Score:       score,
		Severity:    severity,
		AnomalyType: "metric_" + string(severity),
		MetricName:  raw.MetricName,
		MetricValue: raw.MetricValue,
		Msg:         fmt.Sprintf("%s=%.3f", raw.MetricName, *raw.MetricValue),
		RawMsg:      string(raw.Raw),
		Meta:        map[string]interface{}{"ship_id_source": string(source)},
	}
	return anomaly, true, nil
}

func (s *Service) detectorFor(shipID, metricName string) scoring.Detector {
	key := shipID + "|" + metricName
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.detected[key]; ok {
		return d
	}
	d := newDetectorForMetric(metricName)
	s.detected[key] = d
	return d
}
