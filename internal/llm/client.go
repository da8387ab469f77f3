// Package llm talks to a local Ollama-compatible model server to
// generate root-cause analysis and remediation suggestions for
// incidents (spec §4.5). Adapted from the teacher's OllamaProvider
// (internal/services/mira_provider_ollama.go), generalized from a
// single "explanation" call into the two-prompt root-cause +
// remediation sequence original_source's ollama_client.py drives, and
// from a per-provider timeout into the hard 10s-per-call budget spec.md
// requires.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ilodestar/aiops-naas/internal/tracking"
)

// Client is an Ollama-compatible HTTP client.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	logger  tracking.Logger
}

// New builds a Client. timeout bounds every individual call (spec §4.5:
// "each LLM call enforces its own hard wall-clock timeout").
func New(baseURL, model string, timeout time.Duration, logger tracking.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// HealthCheck reports whether the model server is reachable, mirroring
// ollama_client.py's health_check against /api/tags.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("llm health check failed", "error", err)
		}
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Generate issues a single non-streaming completion request and returns
// the raw text, or an error if the request fails, times out, or the
// server returns a non-2xx status.
func (c *Client) Generate(ctx context.Context, prompt string) (response string, err error) {
	ctx, span := tracking.StartSpan(ctx, "llm", "generate")
	defer func() { tracking.EndSpan(span, err) }()

	reqBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("llm: server returned %d: %s", resp.StatusCode, string(raw))
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug("llm generate completed", "duration_ms", time.Since(start).Milliseconds())
	}
	return result.Response, nil
}
