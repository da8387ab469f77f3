package columnar

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CachedResponse is a hit returned by GetCachedResponse.
type CachedResponse struct {
	ResponseText string
	Metadata     map[string]any
	CachedAt     time.Time
}

// cacheKey reproduces llm_cache.py's _generate_cache_key: a SHA-256 of
// the pipe-joined (responseType, incidentType, severity, service,
// metricName), truncated to the first 16 hex characters and prefixed
// with responseType so keys stay legible in ad-hoc queries.
func cacheKey(responseType, incidentType, severity, service, metricName string) string {
	parts := []string{responseType, incidentType, severity, service, metricName}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s_%s", responseType, hex.EncodeToString(sum[:])[:16])
}

// GetCachedResponse looks up a previously generated LLM response keyed
// on incident shape, not incident identity, so similar incidents reuse
// each other's analysis (spec §4.5: "cache before vector search, vector
// search before generation").
func (c *Client) GetCachedResponse(ctx context.Context, responseType, incidentType, severity, service, metricName string) (*CachedResponse, error) {
	ctx, cleanup := c.queryCtx(ctx, "get_cached_response")
	defer cleanup()

	key := cacheKey(responseType, incidentType, severity, service, metricName)
	row := c.conn.QueryRow(ctx, `
		SELECT response_text, metadata, created_at
		FROM llm_cache
		WHERE cache_key = ? AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1
	`, key)

	var text, metaJSON string
	var createdAt time.Time
	if err := row.Scan(&text, &metaJSON, &createdAt); err != nil {
		return nil, nil
	}

	var meta map[string]any
	if metaJSON != "" {
		_ = json.Unmarshal([]byte(metaJSON), &meta)
	}
	return &CachedResponse{ResponseText: text, Metadata: meta, CachedAt: createdAt}, nil
}

// StoreResponse writes an LLM response to the cache with the given TTL.
func (c *Client) StoreResponse(ctx context.Context, responseType, incidentType, incidentID, shipID, severity, service, metricName, responseText string, metadata map[string]any, ttl time.Duration) error {
	ctx, cleanup := c.queryCtx(ctx, "store_response")
	defer cleanup()

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		metaJSON = []byte("{}")
	}
	key := cacheKey(responseType, incidentType, severity, service, metricName)
	expiresAt := time.Now().Add(ttl)

	return c.conn.Exec(ctx, `
		INSERT INTO llm_cache
			(cache_key, incident_type, incident_id, ship_id, response_type, response_text, metadata, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, key, incidentType, incidentID, shipID, responseType, responseText, string(metaJSON), expiresAt)
}
