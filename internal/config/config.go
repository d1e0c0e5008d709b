package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the console service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Insight   InsightConfig   `yaml:"insight"`
	Cache     CacheConfig     `yaml:"cache"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with container detection.
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// InsightConfig holds the analytics/generation backend API configuration.
type InsightConfig struct {
	BaseURL              string `yaml:"base_url"`
	TimeoutSeconds       int    `yaml:"timeout_seconds"`
	SubmitTimeoutSeconds int    `yaml:"submit_timeout_seconds"`
	MaxRetries           int    `yaml:"max_retries"`
}

// Timeout returns the per-request timeout as a duration.
func (c InsightConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SubmitTimeout returns the experiment submission deadline as a duration.
func (c InsightConfig) SubmitTimeout() time.Duration {
	return time.Duration(c.SubmitTimeoutSeconds) * time.Second
}

// CacheConfig holds Redis caching configuration for experiment results.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// TTL returns the cache entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// WarehouseConfig holds Snowflake configuration for direct SQL previews.
type WarehouseConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Account   string `yaml:"account"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
	Warehouse string `yaml:"warehouse"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if cfg.Insight.BaseURL == "" {
		cfg.Insight.BaseURL = "http://localhost:9000"
	}
	if cfg.Insight.TimeoutSeconds == 0 {
		cfg.Insight.TimeoutSeconds = 30
	}
	if cfg.Insight.SubmitTimeoutSeconds == 0 {
		// Experiment runs fan out to SQL + vision analysis server-side
		cfg.Insight.SubmitTimeoutSeconds = 60
	}
	if cfg.Insight.MaxRetries == 0 {
		cfg.Insight.MaxRetries = 3
	}
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = "localhost:6379"
	}
	if cfg.Cache.TTLMinutes == 0 {
		cfg.Cache.TTLMinutes = 30
	}
	if cfg.Warehouse.Database == "" {
		cfg.Warehouse.Database = "MARKETING_DATA_LAKE"
	}
	if cfg.Warehouse.Schema == "" {
		cfg.Warehouse.Schema = "CAMPAIGNS"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("INSIGHT_BASE_URL"); v != "" {
		cfg.Insight.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Addr = v
		if !cfg.Cache.Enabled {
			cfg.Cache.Enabled = true
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("SNOWFLAKE_ACCOUNT"); v != "" {
		cfg.Warehouse.Account = v
	}
	if v := os.Getenv("SNOWFLAKE_USER"); v != "" {
		cfg.Warehouse.User = v
	}
	if v := os.Getenv("SNOWFLAKE_PASSWORD"); v != "" {
		cfg.Warehouse.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg, nil
}
