package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration strictly from environment variables. Unlike
// the console-facing services in this codebase, the pipeline binaries
// never read a config.yaml — every deployment knob is passed through
// the process environment so it composes cleanly with container
// orchestration, and the AllowList file is the only thing hot-reloaded
// (via the watcher in watchers.go, not via viper).
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	setDefaults(v)
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "production")
	v.SetDefault("port", 8080)

	v.SetDefault("bus.url", "nats://nats:4222")

	v.SetDefault("columnar_store.dsn", "clickhouse://clickhouse:9000/default")
	v.SetDefault("columnar_store.pool_size", 8)
	v.SetDefault("columnar_store.query_timeout", "500ms")

	v.SetDefault("vector_store.url", "http://weaviate:8080")
	v.SetDefault("vector_store.timeout", "5s")

	v.SetDefault("llm.url", "http://ollama:11434")
	v.SetDefault("llm.model", "phi3:mini")
	v.SetDefault("llm.timeout", "10s")
	v.SetDefault("llm.concurrency", 4)

	v.SetDefault("registry.url", "http://device-registry:8090")
	v.SetDefault("registry.timeout", "5s")
	v.SetDefault("registry.cache_size", 1024)
	v.SetDefault("registry.cache_ttl", "60s")
	v.SetDefault("registry.shared_cache_addr", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("correlation.threshold", 3)
	v.SetDefault("correlation.dedup_ttl", "900s")
	v.SetDefault("correlation.sweep_interval", "60s")

	v.SetDefault("incident_enrichment.budget", "10s")
	v.SetDefault("incident_enrichment.llm_timeout", "10s")
	v.SetDefault("incident_enrichment.cache_ttl", "24h")
	v.SetDefault("incident_enrichment.vector_limit", 3)

	v.SetDefault("allow_list.path", "")
}

// bindEnv maps each field to the bare, prefix-free environment variable
// name spec §6 documents (BUS_URL, CLICKHOUSE_DSN, ...) instead of the
// dotted MIRADOR_-style keys the console services use.
func bindEnv(v *viper.Viper) {
	binds := map[string]string{
		"environment":                      "ENVIRONMENT",
		"port":                             "PORT",
		"bus.url":                          "BUS_URL",
		"columnar_store.dsn":               "CLICKHOUSE_DSN",
		"columnar_store.pool_size":         "CLICKHOUSE_POOL_SIZE",
		"columnar_store.query_timeout":     "CLICKHOUSE_QUERY_TIMEOUT",
		"vector_store.url":                 "VECTOR_STORE_URL",
		"vector_store.api_key":             "VECTOR_STORE_API_KEY",
		"vector_store.timeout":             "VECTOR_STORE_TIMEOUT",
		"llm.url":                          "LLM_URL",
		"llm.model":                        "LLM_MODEL",
		"llm.timeout":                      "LLM_TIMEOUT",
		"llm.concurrency":                  "LLM_CONCURRENCY",
		"registry.url":                     "REGISTRY_URL",
		"registry.timeout":                 "REGISTRY_TIMEOUT",
		"registry.cache_size":              "REGISTRY_CACHE_SIZE",
		"registry.cache_ttl":               "REGISTRY_CACHE_TTL",
		"registry.shared_cache_addr":       "REGISTRY_SHARED_CACHE_ADDR",
		"logging.level":                    "LOG_LEVEL",
		"logging.format":                   "LOG_FORMAT",
		"correlation.threshold":            "CORRELATION_THRESHOLD",
		"correlation.dedup_ttl":            "DEDUP_TTL",
		"correlation.sweep_interval":       "SWEEP_INTERVAL",
		"incident_enrichment.budget":       "INCIDENT_BUDGET",
		"incident_enrichment.llm_timeout":  "INCIDENT_LLM_TIMEOUT",
		"incident_enrichment.cache_ttl":    "LLM_CACHE_TTL",
		"incident_enrichment.vector_limit": "VECTOR_SEARCH_LIMIT",
		"allow_list.path":                  "ALLOWLIST_PATH",
	}
	for key, env := range binds {
		_ = v.BindEnv(key, env)
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", cfg.Port)
	}
	if cfg.Bus.URL == "" {
		return fmt.Errorf("bus.url is required")
	}
	if cfg.ColumnarStore.DSN == "" {
		return fmt.Errorf("columnar_store.dsn is required")
	}
	if cfg.Correlation.Threshold < 1 {
		return fmt.Errorf("correlation.threshold must be at least 1")
	}
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}
	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.Logging.Format) {
		return fmt.Errorf("invalid log format: %s", cfg.Logging.Format)
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
