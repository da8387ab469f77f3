// Command correlator runs the Correlator service: it windows and
// deduplicates anomaly.enriched records into incidents.created
// (spec §4.3).
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilodestar/aiops-naas/internal/bus"
	"github.com/ilodestar/aiops-naas/internal/config"
	"github.com/ilodestar/aiops-naas/internal/correlator"
	"github.com/ilodestar/aiops-naas/internal/tracking"
)

const drainTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("correlator: failed to load configuration: %v", err)
		return 1
	}

	logger := tracking.New(cfg.Logging.Level, tracking.Format(cfg.Logging.Format))
	logger.Info("correlator starting", "environment", cfg.Environment)

	busClient, err := bus.Connect(cfg.Bus.URL, logger)
	if err != nil {
		logger.Error("failed to connect to message bus", "error", err)
		return 2
	}
	defer busClient.Close()

	svc := correlator.New(cfg.Correlation.Threshold, cfg.Correlation.DedupTTL, logger)

	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()

	go func() {
		<-signalCtx.Done()
		logger.Info("shutdown signal received, draining in-flight work", "drain_timeout", drainTimeout)
		time.Sleep(drainTimeout)
		cancelWork()
	}()

	if err := svc.Run(workCtx, busClient, 0, cfg.Correlation.SweepInterval); err != nil {
		logger.Error("correlator failed to subscribe", "error", err)
		return 2
	}

	<-workCtx.Done()
	logger.Info("correlator stopped")
	return 0
}
