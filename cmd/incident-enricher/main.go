// Command incident-enricher runs the Incident Enricher service: it
// consumes incidents.created, attaches an LLM-generated root-cause and
// remediation pair backed by a response cache and vector-similarity
// recall, and publishes incidents.enriched (spec §4.4).
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
	"github.com/ilodestar/aiops-naas/internal/incidentenricher"
	"github.com/ilodestar/aiops-naas/internal/llm"
	"github.com/ilodestar/aiops-naas/internal/tracking"
	"github.com/ilodestar/aiops-naas/internal/vectorstore"
)

const drainTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("incident-enricher: failed to load configuration: %v", err)
		return 1
	}

	logger := tracking.New(cfg.Logging.Level, tracking.Format(cfg.Logging.Format))
	logger.Info("incident enricher starting", "environment", cfg.Environment)

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

	vectors, err := vectorstore.New(cfg.VectorStore.URL, cfg.VectorStore.APIKey, cfg.VectorStore.Timeout, logger)
	if err != nil {
		logger.Error("failed to build vector store client", "error", err)
		return 2
	}
	defer vectors.Close()

	llmClient := llm.New(cfg.LLM.URL, cfg.LLM.Model, cfg.LLM.Timeout, logger)

	svc := incidentenricher.New(store, vectors, llmClient, cfg.IncidentEnrichment.Budget, cfg.IncidentEnrichment.LLMTimeout, cfg.IncidentEnrichment.CacheTTL, cfg.IncidentEnrichment.VectorLimit, logger)

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
		logger.Error("incident enricher failed to subscribe", "error", err)
		return 2
	}

	<-workCtx.Done()
	logger.Info("incident enricher stopped")
	return 0
}
