// Package incidentenricher implements the Incident Enricher stage: it
// consumes incidents.created, attaches an LLM-generated root-cause and
// remediation pair (reusing a columnar response cache and a
// vector-similarity recall before ever calling the model), and
// publishes incidents.enriched. Every incident is bounded by a hard
// wall-clock budget; nothing here is allowed to block incident delivery
// on LLM availability (spec §4.4).
package incidentenricher

import (
	"context"
	"time"

	"github.com/ilodestar/aiops-naas/internal/columnar"
	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/llm"
	"github.com/ilodestar/aiops-naas/internal/metrics"
	"github.com/ilodestar/aiops-naas/internal/tracking"
	"github.com/ilodestar/aiops-naas/internal/vectorstore"
)

const (
	responseTypeRootCause   = "root_cause"
	responseTypeRemediation = "remediation"

	// DefaultBudget is the hard wall-clock ceiling for one incident's
	// enrichment pipeline (spec §4.4).
	DefaultBudget = 10 * time.Second
	// DefaultLLMTimeout bounds each individual LLM call.
	DefaultLLMTimeout = 10 * time.Second
	// DefaultCacheTTL is how long a generated response stays reusable.
	DefaultCacheTTL = 24 * time.Hour
	// DefaultVectorLimit caps the similar-incident recall.
	DefaultVectorLimit = 3
)

// Cache is the subset of internal/columnar's LLM response cache the
// enricher depends on, narrowed to an interface so tests can substitute
// a fake instead of dialing ClickHouse.
type Cache interface {
	GetCachedResponse(ctx context.Context, responseType, incidentType, severity, service, metricName string) (*columnar.CachedResponse, error)
	StoreResponse(ctx context.Context, responseType, incidentType, incidentID, shipID, severity, service, metricName, responseText string, metadata map[string]any, ttl time.Duration) error
}

// VectorStore is the subset of internal/vectorstore the enricher needs.
type VectorStore interface {
	Search(ctx context.Context, domain, severity, service string, limit int) ([]vectorstore.SimilarIncident, error)
	Upsert(ctx context.Context, incidentID, domain, severity, service, resolution string, when time.Time) error
}

// Generator is the subset of internal/llm the enricher needs.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service is the Incident Enricher (spec §4.4).
type Service struct {
	cache       Cache
	vectors     VectorStore
	llm         Generator
	logger      tracking.Logger
	budget      time.Duration
	llmTimeout  time.Duration
	cacheTTL    time.Duration
	vectorLimit int
}

// New builds a Service. Zero-value durations/limits fall back to the
// spec's stated defaults.
func New(cache Cache, vectors VectorStore, generator Generator, budget, llmTimeout, cacheTTL time.Duration, vectorLimit int, logger tracking.Logger) *Service {
	if budget <= 0 {
		budget = DefaultBudget
	}
	if llmTimeout <= 0 {
		llmTimeout = DefaultLLMTimeout
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	if vectorLimit <= 0 {
		vectorLimit = DefaultVectorLimit
	}
	return &Service{
		cache:       cache,
		vectors:     vectors,
		llm:         generator,
		logger:      logger,
		budget:      budget,
		llmTimeout:  llmTimeout,
		cacheTTL:    cacheTTL,
		vectorLimit: vectorLimit,
	}
}

// Enrich runs the cache/vector/LLM pipeline for one incident and always
// returns a fully populated IncidentEnriched — ai_insights is never
// left empty, whatever fails along the way (spec §4.4's cancellation
// contract).
func (s *Service) Enrich(ctx context.Context, incident eventmodels.IncidentCreated) eventmodels.IncidentEnriched {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	ic := llm.IncidentContext{
		Domain:     string(incident.IncidentType),
		Severity:   string(incident.Severity),
		Service:    incident.Service,
		MetricName: incident.MetricName,
		Scope:      scopeFromEvidence(incident.Evidence),
	}

	similar := s.searchSimilar(ctx, incident)

	rootCause, rootCauseFromCache := s.resolveResponse(ctx, responseTypeRootCause, incident, ic, "")
	remediation, remediationFromCache := s.resolveResponse(ctx, responseTypeRemediation, incident, ic, rootCause)

	s.upsertVector(ctx, incident, rootCause)

	metrics.IncidentsProcessedTotal.Inc()

	return eventmodels.IncidentEnriched{
		IncidentCreated: incident,
		AIInsights: eventmodels.AIInsights{
			RootCause:   rootCause,
			Remediation: remediation,
		},
		SimilarIncidents: similar,
		// A fully-cached enrichment (both responses reused, no LLM
		// call issued) is the only case worth surfacing as a cache
		// hit on the published record; a partial hit still results
		// in outbound LLM traffic and is counted via the per-lookup
		// cache_hits/cache_misses counters instead.
		CacheHit:         rootCauseFromCache && remediationFromCache,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}
}

// resolveResponse runs the cache-then-LLM sequence for one response
// type, returning the text and whether it came from the cache.
func (s *Service) resolveResponse(ctx context.Context, responseType string, incident eventmodels.IncidentCreated, ic llm.IncidentContext, rootCause string) (string, bool) {
	if cached := s.lookupCache(ctx, responseType, incident); cached != "" {
		return cached, true
	}

	text, err := s.generate(ctx, responseType, ic, rootCause)
	if err != nil {
		metrics.IncidentEnrichmentErrorsTotal.Inc()
		if s.logger != nil {
			s.logger.Warn("incident enricher falling back to template", "response_type", responseType, "incident_id", incident.IncidentID, "error", err)
		}
		return fallbackFor(responseType, ic), false
	}

	s.storeCache(ctx, responseType, incident, text)
	return text, false
}

func (s *Service) lookupCache(ctx context.Context, responseType string, incident eventmodels.IncidentCreated) string {
	if s.cache == nil {
		return ""
	}
	resp, err := s.cache.GetCachedResponse(ctx, responseType, string(incident.IncidentType), string(incident.Severity), incident.Service, incident.MetricName)
	if err != nil || resp == nil {
		metrics.IncidentCacheMissesTotal.Inc()
		return ""
	}
	metrics.IncidentCacheHitsTotal.Inc()
	return resp.ResponseText
}

func (s *Service) storeCache(ctx context.Context, responseType string, incident eventmodels.IncidentCreated, text string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.StoreResponse(ctx, responseType, string(incident.IncidentType), incident.IncidentID, incident.ShipID, string(incident.Severity), incident.Service, incident.MetricName, text, nil, s.cacheTTL); err != nil {
		if s.logger != nil {
			s.logger.Warn("incident enricher failed to write cache", "response_type", responseType, "incident_id", incident.IncidentID, "error", err)
		}
	}
}

func (s *Service) generate(ctx context.Context, responseType string, ic llm.IncidentContext, rootCause string) (string, error) {
	if s.llm == nil {
		return "", errNoGenerator
	}
	callCtx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	var prompt string
	if responseType == responseTypeRootCause {
		prompt = llm.RootCausePrompt(ic)
	} else {
		prompt = llm.RemediationPrompt(ic, rootCause)
	}

	metrics.LLMCallsTotal.WithLabelValues(responseType).Inc()
	text, err := s.llm.Generate(callCtx, prompt)
	if err != nil {
		if callCtx.Err() != nil {
			metrics.LLMTimeoutsTotal.WithLabelValues(responseType).Inc()
		}
		return "", err
	}
	return text, nil
}

func (s *Service) searchSimilar(ctx context.Context, incident eventmodels.IncidentCreated) []eventmodels.SimilarIncident {
	if s.vectors == nil {
		return nil
	}
	hits, err := s.vectors.Search(ctx, string(incident.IncidentType), string(incident.Severity), incident.Service, s.vectorLimit)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("incident enricher vector search unavailable", "incident_id", incident.IncidentID, "error", err)
		}
		return nil
	}
	out := make([]eventmodels.SimilarIncident, 0, len(hits))
	for _, h := range hits {
		out = append(out, eventmodels.SimilarIncident{
			IncidentID:      h.IncidentID,
			SimilarityScore: 1 - float64(h.Distance),
			Resolution:      h.Resolution,
		})
	}
	return out
}

func (s *Service) upsertVector(ctx context.Context, incident eventmodels.IncidentCreated, resolution string) {
	if s.vectors == nil {
		return
	}
	if err := s.vectors.Upsert(ctx, incident.IncidentID, string(incident.IncidentType), string(incident.Severity), incident.Service, resolution, incident.TS); err != nil {
		if s.logger != nil {
			s.logger.Warn("incident enricher failed to upsert vector", "incident_id", incident.IncidentID, "error", err)
		}
	}
}

func scopeFromEvidence(evidence []eventmodels.EvidenceItem) []llm.ScopeEntry {
	scope := make([]llm.ScopeEntry, 0, len(evidence))
	for _, e := range evidence {
		scope = append(scope, llm.ScopeEntry{Service: e.Detector})
	}
	return scope
}

func fallbackFor(responseType string, ic llm.IncidentContext) string {
	if responseType == responseTypeRootCause {
		return llm.FallbackRootCause(ic)
	}
	return llm.FallbackRemediation(ic)
}
