// Command detector runs the Anomaly Detector service: it consumes
// logs.raw and metrics.raw, scores and classifies each record, and
// publishes anomaly.detected (spec §4.1).
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
	"github.com/ilodestar/aiops-naas/internal/detector"
	"github.com/ilodestar/aiops-naas/internal/registry"
	"github.com/ilodestar/aiops-naas/internal/tracking"
)

const drainTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("detector: failed to load configuration: %v", err)
		return 1
	}

	logger := tracking.New(cfg.Logging.Level, tracking.Format(cfg.Logging.Format))
	logger.Info("anomaly detector starting", "environment", cfg.Environment)

	busClient, err := bus.Connect(cfg.Bus.URL, logger)
	if err != nil {
		logger.Error("failed to connect to message bus", "error", err)
		return 2
	}
	defer busClient.Close()

	var sharedCache registry.SharedCache // nil disables the second tier
	if cfg.Registry.SharedCacheAddr != "" {
		redisCache, err := registry.NewRedisSharedCache(cfg.Registry.SharedCacheAddr, cfg.Registry.CacheTTL, logger)
		if err != nil {
			logger.Warn("shared registry cache unavailable, falling back to per-replica LRU only", "error", err)
		} else {
			sharedCache = redisCache
			defer redisCache.Close()
		}
	}
	registryClient := registry.New(cfg.Registry.URL, cfg.Registry.Timeout, cfg.Registry.CacheSize, cfg.Registry.CacheTTL, sharedCache, logger)

	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	allowList := config.NewAllowListWatcher(cfg.AllowList.Path, logger)
	go func() {
		if err := allowList.Start(signalCtx); err != nil {
			logger.Warn("allow-list watcher failed to start", "error", err)
		}
	}()
	defer allowList.Stop()

	svc := detector.New(registryClient, allowList, logger)

	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()

	go func() {
		<-signalCtx.Done()
		logger.Info("shutdown signal received, draining in-flight work", "drain_timeout", drainTimeout)
		time.Sleep(drainTimeout)
		cancelWork()
	}()

	if err := svc.Run(workCtx, busClient, 0); err != nil {
		logger.Error("detector failed to subscribe", "error", err)
		return 2
	}

	<-workCtx.Done()
	logger.Info("anomaly detector stopped")
	return 0
}
