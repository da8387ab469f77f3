// Command persistor runs the Incident Persistor service: it consumes
// incidents.enriched and idempotently upserts each incident plus an
// append-only timeline entry into the columnar store (spec §4.5).
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilodestar/aiops-naas/internal/bus"
	"github.com/ilodestar/aiops-naas/internal/columnar"
	"github.com/ilodestar/aiops-naas/internal/config"
	"github.com/ilodestar/aiops-naas/internal/persistor"
	"github.com/ilodestar/aiops-naas/internal/tracking"
)

const drainTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("persistor: failed to load configuration: %v", err)
		return 1
	}

	logger := tracking.New(cfg.Logging.Level, tracking.Format(cfg.Logging.Format))
	logger.Info("persistor starting", "environment", cfg.Environment)

	busClient, err := bus.Connect(cfg.Bus.URL, logger)
	if err != nil {
		logger.Error("failed to connect to message bus", "error", err)
		return 2
	}
	defer busClient.Close()

	setupCtx, cancelSetup := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := columnar.New(setupCtx, cfg.ColumnarStore.DSN, cfg.ColumnarStore.PoolSize, cfg.ColumnarStore.QueryTimeout, logger)
	cancelSetup()
	if err != nil {
		logger.Error("failed to connect to columnar store", "error", err)
		return 2
	}
	defer store.Close()

	svc := persistor.New(store, logger)

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

	if err := svc.Run(workCtx, busClient, 0); err != nil {
		logger.Error("persistor failed to subscribe", "error", err)
		return 2
	}

	<-workCtx.Done()
	logger.Info("persistor stopped")
	return 0
}
