// Package config loads the environment-variable configuration spec §6
// lists for every service in the pipeline (detector, enricher,
// correlator, incident-enricher, persistor). No YAML file is read —
// configuration is environment-only — but the mapstructure-tagged
// struct tree and the viper AutomaticEnv binding keep the teacher's
// loader.go idiom.
package config

import "time"

// Config aggregates every service's settings; each cmd/<service> main
// reads only the sub-struct it needs.
type Config struct {
	Environment string `mapstructure:"environment"`
	Port        int    `mapstructure:"port"`

	Bus                Bus                `mapstructure:"bus"`
	ColumnarStore      ColumnarStore      `mapstructure:"columnar_store"`
	VectorStore        VectorStore        `mapstructure:"vector_store"`
	LLM                LLM                `mapstructure:"llm"`
	Registry           Registry           `mapstructure:"registry"`
	Logging            Logging            `mapstructure:"logging"`
	Correlation        Correlation        `mapstructure:"correlation"`
	IncidentEnrichment IncidentEnrichment `mapstructure:"incident_enrichment"`
	AllowList          AllowList          `mapstructure:"allow_list"`
}

// Bus holds message-bus connection settings.
type Bus struct {
	URL string `mapstructure:"url"`
}

// ColumnarStore holds the ClickHouse connection settings (spec §6).
type ColumnarStore struct {
	DSN          string        `mapstructure:"dsn"`
	PoolSize     int           `mapstructure:"pool_size"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

// VectorStore holds the Weaviate connection settings.
type VectorStore struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LLM holds the local LLM server settings.
type LLM struct {
	URL         string        `mapstructure:"url"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
}

// Registry holds the device registry client settings.
type Registry struct {
	URL             string        `mapstructure:"url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	CacheSize       int           `mapstructure:"cache_size"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	SharedCacheAddr string        `mapstructure:"shared_cache_addr"` // "" disables the second tier
}

// Logging holds the structured-logging settings.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" | "text"
}

// Correlation holds correlator tuning knobs.
type Correlation struct {
	Threshold     int           `mapstructure:"threshold"`
	DedupTTL      time.Duration `mapstructure:"dedup_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// IncidentEnrichment holds incident-enricher tuning knobs.
type IncidentEnrichment struct {
	Budget      time.Duration `mapstructure:"budget"`
	LLMTimeout  time.Duration `mapstructure:"llm_timeout"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	VectorLimit int           `mapstructure:"vector_limit"`
}

// AllowList points at the flat, hot-reloadable operational allow-list
// file the detector consults before scoring a raw event (spec §4.1).
// Empty Path disables filtering.
type AllowList struct {
	Path string `mapstructure:"path"`
}

// IsProduction reports whether this process is running in production.
func (c *Config) IsProduction() bool { return c.Environment == "production" }
