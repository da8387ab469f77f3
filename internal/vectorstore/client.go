// Package vectorstore stores and retrieves incident embeddings used by
// the incident enricher's similar-incident lookup. It wraps the
// official Weaviate Go client the same way internal/weavstore wraps it
// for other record types: schema ensured once, objects addressed by a
// deterministic ID, no raw GraphQL strings.
package vectorstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	wv "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	wm "github.com/weaviate/weaviate/entities/models"

	"github.com/ilodestar/aiops-naas/internal/tracking"
)

const className = "Incident"

// nsIncident namespaces incident_id -> Weaviate object ID derivation, the
// same way the teacher's weavstore package namespaces its own deterministic
// IDs (nsMirador in internal/weavstore/kpi_store.go) rather than reusing
// Weaviate's own default namespace.
var nsIncident = uuid.MustParse("a9c36e2e-4b8a-4b0a-9a6b-3f5c9d8e2b10")

// objectID derives a Weaviate-valid UUID from an incident_id (format
// "INC-{ship}-{domain}-{unix}", not itself a UUID) the same way
// internal/weavstore/kpi_store.go and mira_rca_store.go derive their
// object IDs via uuid.NewV5: deterministic, so re-upserting the same
// incident always resolves to the same object instead of erroring or
// silently creating duplicates.
func objectID(incidentID string) string {
	return uuid.NewV5(nsIncident, []byte(incidentID)).String()
}

// SimilarIncident is a single nearest-neighbor hit returned by Search.
type SimilarIncident struct {
	IncidentID string
	Domain     string
	Severity   string
	Service    string
	Timestamp  time.Time
	Resolution string
	Distance   float32
}

// Client wraps a Weaviate collection of incident embeddings.
type Client struct {
	wv     *wv.Client
	logger tracking.Logger

	schemaOnce sync.Once
	schemaErr  error
}

// New builds a Client pointed at baseURL (scheme://host:port), matching
// the config-driven construction the teacher's internal/storage/weaviate
// and internal/weavstore packages both use.
func New(baseURL, apiKey string, timeout time.Duration, logger tracking.Logger) (*Client, error) {
	u := strings.TrimPrefix(strings.TrimPrefix(baseURL, "https://"), "http://")
	scheme := "http"
	if strings.HasPrefix(baseURL, "https://") {
		scheme = "https"
	}
	cfg := wv.Config{
		Host:    u,
		Scheme:  scheme,
		Headers: map[string]string{},
	}
	if apiKey != "" {
		cfg.Headers["Authorization"] = "Bearer " + apiKey
	}
	client, err := wv.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: build weaviate client: %w", err)
	}
	return &Client{wv: client, logger: logger}, nil
}

func (c *Client) ensureClass(ctx context.Context) error {
	c.schemaOnce.Do(func() {
		classDef := &wm.Class{
			Class:      className,
			Vectorizer: "none",
			Properties: []*wm.Property{
				{Name: "incidentId", DataType: []string{"text"}},
				{Name: "domain", DataType: []string{"text"}},
				{Name: "severity", DataType: []string{"text"}},
				{Name: "service", DataType: []string{"text"}},
				{Name: "timestamp", DataType: []string{"date"}},
				{Name: "resolution", DataType: []string{"text"}},
			},
		}
		if err := c.wv.Schema().ClassCreator().WithClass(classDef).Do(ctx); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				return
			}
			c.schemaErr = fmt.Errorf("vectorstore: ensure class: %w", err)
			if c.logger != nil {
				c.logger.Warn("failed ensuring Incident class", "error", c.schemaErr)
			}
		}
	})
	return c.schemaErr
}

// Upsert stores or replaces the embedding for an incident, keyed on its
// incident_id so re-enrichment overwrites rather than duplicates.
func (c *Client) Upsert(ctx context.Context, incidentID, domain, severity, service, resolution string, when time.Time) (err error) {
	ctx, span := tracking.StartSpan(ctx, "vectorstore", "upsert")
	defer func() { tracking.EndSpan(span, err) }()

	if err = c.ensureClass(ctx); err != nil {
		return err
	}
	vec := Embed(Fingerprint(domain, severity, service, ""))
	props := map[string]any{
		"incidentId": incidentID,
		"domain":     domain,
		"severity":   severity,
		"service":    service,
		"timestamp":  when.Format(time.RFC3339Nano),
		"resolution": resolution,
	}
	objID := objectID(incidentID)

	if err := c.wv.Data().Creator().
		WithClassName(className).
		WithID(objID).
		WithProperties(props).
		WithVector(vec).
		Do(ctx); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return c.wv.Data().Updater().
				WithClassName(className).
				WithID(objID).
				WithProperties(props).
				WithVector(vec).
				Do(ctx)
		}
		return fmt.Errorf("vectorstore: upsert %s: %w", incidentID, err)
	}
	return nil
}

// Search returns up to limit incidents whose embedding is nearest to
// the query made from (domain, severity, service) — spec §4.5's
// "similar past incidents" lookup. The incident enricher publishes its
// hits as similar_incidents; they are not passed to the LLM prompts.
func (c *Client) Search(ctx context.Context, domain, severity, service string, limit int) (results []SimilarIncident, err error) {
	ctx, span := tracking.StartSpan(ctx, "vectorstore", "search")
	defer func() { tracking.EndSpan(span, err) }()

	if err = c.ensureClass(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 3
	}
	vec := Embed(Fingerprint(domain, severity, service, ""))

	nearVector := c.wv.GraphQL().NearVectorArgBuilder().WithVector(vec)
	fields := []graphql.Field{
		{Name: "incidentId"},
		{Name: "domain"},
		{Name: "severity"},
		{Name: "service"},
		{Name: "timestamp"},
		{Name: "resolution"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	resp, err := c.wv.GraphQL().Get().
		WithClassName(className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: search: %w", err)
	}
	if resp.Errors != nil && len(resp.Errors) > 0 {
		return nil, fmt.Errorf("vectorstore: graphql: %v", resp.Errors[0].Message)
	}

	return parseSearchResponse(resp)
}

// Close releases any pooled connections held by the underlying client.
func (c *Client) Close() error { return nil }
