package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/rx-interaction-engine/internal/domain"
)

// Manager implements the domain.ConfigManager interface using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment, and defaults
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/rx-interaction-engine/")

	viper.SetEnvPrefix("RX_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars cover every key.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.request_timeout", "30s")

	// Engine defaults: clinical policy knobs consumed, not owned, by the engine
	viper.SetDefault("engine.max_drugs", 10)
	viper.SetDefault("engine.adapter_timeout", "2s")
	viper.SetDefault("engine.check_deadline", "5s")
	viper.SetDefault("engine.max_concurrent_pairs", 8)

	// Cache defaults; redis_url empty means in-process LRU only
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.default_ttl", "1h")
	viper.SetDefault("cache.max_entries", 4096)
	viper.SetDefault("cache.max_retries", 3)
	viper.SetDefault("cache.pool_size", 10)
	viper.SetDefault("cache.pool_timeout", "4s")

	// Curated store defaults
	viper.SetDefault("database.driver", "memory")
	viper.SetDefault("database.path", "./data/curated.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns HTTP server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetEngineConfig returns the interaction engine configuration
func (m *Manager) GetEngineConfig() *domain.EngineConfig {
	return &m.config.Engine
}

// GetCacheConfig returns result cache configuration
func (m *Manager) GetCacheConfig() *domain.CacheConfig {
	return &m.config.Cache
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Engine.MaxDrugs < 2 {
		return fmt.Errorf("engine.max_drugs must be at least 2, got %d", config.Engine.MaxDrugs)
	}
	if config.Engine.AdapterTimeout <= 0 {
		return fmt.Errorf("engine.adapter_timeout must be positive")
	}
	if config.Engine.CheckDeadline < config.Engine.AdapterTimeout {
		return fmt.Errorf("engine.check_deadline (%s) must not be shorter than engine.adapter_timeout (%s)",
			config.Engine.CheckDeadline, config.Engine.AdapterTimeout)
	}

	switch config.Database.Driver {
	case "memory":
	case "sqlite":
		if config.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "postgres":
		if config.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver: %s", config.Database.Driver)
	}

	for i, ref := range config.References {
		if ref.Name == "" {
			return fmt.Errorf("references[%d].name is required", i)
		}
		if ref.BaseURL == "" {
			return fmt.Errorf("references[%d].base_url is required", i)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}
