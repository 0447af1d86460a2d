package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Engine      EngineConfig      `mapstructure:"engine"`
	Cache       CacheConfig       `mapstructure:"cache"`
	References  []ReferenceConfig `mapstructure:"references"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Environment string            `mapstructure:"environment"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// EngineConfig represents the interaction engine's clinical policy knobs.
type EngineConfig struct {
	// MaxDrugs bounds the size of one interaction check (C(N,2) pairs).
	MaxDrugs int `mapstructure:"max_drugs"`

	// AdapterTimeout bounds each individual source adapter call.
	AdapterTimeout time.Duration `mapstructure:"adapter_timeout"`

	// CheckDeadline bounds an entire check; adapter responses that have not
	// arrived by then are treated as unavailable for their pair.
	CheckDeadline time.Duration `mapstructure:"check_deadline"`

	// MaxConcurrentPairs bounds the per-request pair fan-out.
	MaxConcurrentPairs int `mapstructure:"max_concurrent_pairs"`
}

// CacheConfig represents result cache configuration. When RedisURL is empty
// the in-process LRU cache is used alone.
type CacheConfig struct {
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MaxEntries  int           `mapstructure:"max_entries"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// ReferenceConfig represents one external drug interaction reference service.
type ReferenceConfig struct {
	Name       string        `mapstructure:"name"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  int           `mapstructure:"rate_limit"` // requests per second
	RetryCount int           `mapstructure:"retry_count"`
}

// DatabaseConfig represents the curated store backend. Driver is one of
// "memory", "sqlite", or "postgres".
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	Path            string        `mapstructure:"path"` // sqlite file path
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
