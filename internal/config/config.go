// Package config loads service configuration: defaults, then an optional
// YAML file, then environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"lessonforge/internal/logging"
)

// Config holds all lessonforge configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	LLM     LLMConfig      `yaml:"llm"`
	Routing RoutingConfig  `yaml:"routing"`
	Storage StorageConfig  `yaml:"storage"`
	Usage   UsageConfig    `yaml:"usage"`
	Logging logging.Config `yaml:"logging"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"SERVER_ADDR"`
	CORSOrigins     []string      `yaml:"cors_origins" envconfig:"SERVER_CORS_ORIGINS"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SERVER_SHUTDOWN_TIMEOUT"`
}

// LLMConfig configures the completion provider.
type LLMConfig struct {
	Provider    string        `yaml:"provider" envconfig:"LLM_PROVIDER"`
	Model       string        `yaml:"model" envconfig:"LLM_MODEL"`
	BaseURL     string        `yaml:"base_url" envconfig:"LLM_BASE_URL"`
	Temperature float32       `yaml:"temperature" envconfig:"LLM_TEMPERATURE"`
	MaxTokens   int           `yaml:"max_tokens" envconfig:"LLM_MAX_TOKENS"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"LLM_TIMEOUT"`

	// APIKey is environment-only; it never appears in YAML files.
	APIKey string `yaml:"-" envconfig:"LLM_API_KEY"`
}

// RoutingConfig configures domain-keyword overrides.
type RoutingConfig struct {
	OverridesPath  string `yaml:"overrides_path" envconfig:"ROUTING_OVERRIDES_PATH"`
	WatchOverrides bool   `yaml:"watch_overrides" envconfig:"ROUTING_WATCH_OVERRIDES"`
}

// StorageConfig configures the generation audit store.
type StorageConfig struct {
	Enabled      bool   `yaml:"enabled" envconfig:"STORAGE_ENABLED"`
	DatabasePath string `yaml:"database_path" envconfig:"STORAGE_DATABASE_PATH"`
}

// UsageConfig configures per-caller quota tracking.
type UsageConfig struct {
	Enabled    bool          `yaml:"enabled" envconfig:"USAGE_ENABLED"`
	RedisAddr  string        `yaml:"redis_addr" envconfig:"USAGE_REDIS_ADDR"`
	RedisDB    int           `yaml:"redis_db" envconfig:"USAGE_REDIS_DB"`
	DailyLimit int           `yaml:"daily_limit" envconfig:"USAGE_DAILY_LIMIT"`
	Window     time.Duration `yaml:"window" envconfig:"USAGE_WINDOW"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   1500,
			Timeout:     60 * time.Second,
		},
		Storage: StorageConfig{
			DatabasePath: "lessonforge.db",
		},
		Usage: UsageConfig{
			RedisAddr:  "localhost:6379",
			DailyLimit: 200,
			Window:     24 * time.Hour,
		},
		Logging: logging.Config{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load builds the effective configuration. path may be empty, in which case
// only defaults and environment overrides apply. A missing file at path is an
// error; other YAML problems are too.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("lessonforge", cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return cfg, nil
}
