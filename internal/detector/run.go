package detector

import (
	"context"
	"encoding/json"

	"github.com/ilodestar/aiops-naas/internal/bus"
	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/metrics"
	"github.com/ilodestar/aiops-naas/internal/partition"
)

const (
	subjectLogsRaw      = "logs.raw"
	subjectMetricsRaw   = "metrics.raw"
	subjectAnomalyOut   = "anomaly.detected"
	defaultPartitionFan = 8
)

// Run subscribes to logs.raw and metrics.raw and publishes
// anomaly.detected, hashing each record onto one of partitionFan
// single-worker channels keyed by the record's best-effort partition
// identity (ship_id, else hostname) so per-partition FIFO is preserved
// (spec §5) without serializing the whole service on one goroutine.
// Grounded on the durable pull-consumer pattern internal/bus wraps and
// the partition-hash-to-single-worker-channel idiom described for every
// service in this pipeline.
func (s *Service) Run(ctx context.Context, busClient *bus.Client, partitionFan int) error {
	if partitionFan <= 0 {
		partitionFan = defaultPartitionFan
	}
	workers := make([]chan rawMsg, partitionFan)
	for i := range workers {
		workers[i] = make(chan rawMsg, 64)
		go s.runWorker(ctx, busClient, workers[i])
	}

	if err := s.subscribeKind(ctx, busClient, subjectLogsRaw, kindLog, workers); err != nil {
		return err
	}
	if err := s.subscribeKind(ctx, busClient, subjectMetricsRaw, kindMetric, workers); err != nil {
		return err
	}
	return nil
}

type recordKind int

const (
	kindLog recordKind = iota
	kindMetric
)

type rawMsg struct {
	event eventmodels.RawEvent
	kind  recordKind
}

func (s *Service) subscribeKind(ctx context.Context, busClient *bus.Client, subject string, kind recordKind, workers []chan rawMsg) error {
	return busClient.Subscribe(ctx, "detector", subject, 20, func(ctx context.Context, data []byte) error {
		var event eventmodels.RawEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return eventmodels.NewPipelineError(eventmodels.KindSchema, "", "malformed raw event json", err)
		}
		event.Raw = data

		key := event.ShipID
		if key == "" {
			key = event.Hostname
		}
		idx := partition.Index(key, len(workers))

		select {
		case workers[idx] <- rawMsg{event: event, kind: kind}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (s *Service) runWorker(ctx context.Context, busClient *bus.Client, in <-chan rawMsg) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-in:
			s.handle(ctx, busClient, msg)
		}
	}
}

func (s *Service) handle(ctx context.Context, busClient *bus.Client, msg rawMsg) {
	var (
		anomaly *eventmodels.AnomalyDetected
		ok      bool
		err     error
	)
	switch msg.kind {
	case kindLog:
		anomaly, ok, err = s.ProcessLog(ctx, msg.event)
	default:
		anomaly, ok, err = s.ProcessMetric(ctx, msg.event)
	}
	if err != nil {
		if s.logger != nil {
			s.logger.Error("detector failed to process record", "error", err)
		}
		return
	}
	if !ok {
		return
	}
	metrics.AnomaliesDetectedTotal.WithLabelValues(string(anomaly.Domain), string(anomaly.Severity)).Inc()
	if err := busClient.Publish(ctx, subjectAnomalyOut, anomaly); err != nil {
		if s.logger != nil {
			s.logger.Error("detector failed to publish anomaly", "error", err, "tracking_id", anomaly.TrackingID)
		}
	}
}
