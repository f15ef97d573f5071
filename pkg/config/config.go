// ABOUTME: Configuration management with an optional YAML file and environment variable overrides
// ABOUTME: Defines configuration for the server, store, cache, LLM, poller, ArXiv runs and logging

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"aiml-digests/pkg/utils/parse"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	LLM      LLMConfig      `yaml:"llm"`
	Poller   PollerConfig   `yaml:"poller"`
	Arxiv    ArxivConfig    `yaml:"arxiv"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Features maps feature flag names to their state; env FEATURE_* wins
	Features map[string]bool `yaml:"features"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string `yaml:"port"`

	// RateLimit is the number of requests allowed per client per window
	RateLimit int `yaml:"rate_limit"`

	// RateWindowSeconds is the rate limit window
	RateWindowSeconds int `yaml:"rate_window_seconds"`
}

// DatabaseConfig holds the SQLite store location
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig holds LLM result cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (file/memory/redis/sqlite)
	Type string `yaml:"type"`

	// Dir is the directory used by the file backend
	Dir string `yaml:"dir"`

	// SQLitePath is the database file used by the sqlite backend
	SQLitePath string `yaml:"sqlite_path"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LLMConfig holds chat completion provider settings
type LLMConfig struct {
	// APIKey enables the provider; empty selects the disabled client
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`

	SummaryMaxTokens int `yaml:"summary_max_tokens"`
	TimeoutSeconds   int `yaml:"timeout_seconds"`
}

// PollerConfig holds feed scheduler settings
type PollerConfig struct {
	// Concurrency caps simultaneous feed polls in PollAll
	Concurrency int `yaml:"concurrency"`

	// FetchTimeoutSeconds bounds a single feed download attempt
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"`

	// PageFetch enables fetching linked pages for short feed entries
	PageFetch bool `yaml:"page_fetch"`
}

// ArxivConfig holds ArXiv extraction run settings
type ArxivConfig struct {
	BatchSize      int `yaml:"batch_size"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`

	// File enables rotated file output in addition to stdout
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration used when neither a file nor env vars are set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              "8000",
			RateLimit:         100,
			RateWindowSeconds: 60,
		},
		Database: DatabaseConfig{Path: "instance/aiml_news.db"},
		Cache: CacheConfig{
			Type:       "file",
			Dir:        "instance/llm_cache",
			SQLitePath: "instance/llm_cache.db",
			Redis: RedisConfig{
				Address: "localhost:6379",
			},
		},
		LLM: LLMConfig{
			BaseURL:          "https://api.openai.com/v1",
			Model:            "gpt-4o",
			SummaryMaxTokens: 150,
			TimeoutSeconds:   120,
		},
		Poller: PollerConfig{
			Concurrency:         5,
			FetchTimeoutSeconds: 60,
			PageFetch:           true,
		},
		Arxiv: ArxivConfig{
			BatchSize:      10,
			TimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Features: map[string]bool{},
	}
}

// LoadFromEnv loads configuration from environment variables on top of the defaults
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load reads the YAML file at path (if any) and then applies environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		if cfg.Features == nil {
			cfg.Features = map[string]bool{}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Server.RateLimit = getEnvAsIntOrDefault("RATE_LIMIT", c.Server.RateLimit)
	c.Server.RateWindowSeconds = getEnvAsIntOrDefault("RATE_WINDOW_SECONDS", c.Server.RateWindowSeconds)

	c.Database.Path = getEnvOrDefault("DATABASE_PATH", c.Database.Path)

	c.Cache.Type = getEnvOrDefault("CACHE_TYPE", c.Cache.Type)
	c.Cache.Dir = getEnvOrDefault("CACHE_DIR", c.Cache.Dir)
	c.Cache.SQLitePath = getEnvOrDefault("CACHE_SQLITE_PATH", c.Cache.SQLitePath)
	c.Cache.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", c.Cache.Redis.Address)
	c.Cache.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", c.Cache.Redis.Password)
	c.Cache.Redis.DB = getEnvAsIntOrDefault("REDIS_DB", c.Cache.Redis.DB)

	c.LLM.APIKey = getEnvOrDefault("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnvOrDefault("OPENAI_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnvOrDefault("OPENAI_MODEL", c.LLM.Model)
	c.LLM.SummaryMaxTokens = getEnvAsIntOrDefault("SUMMARY_MAX_TOKENS", c.LLM.SummaryMaxTokens)
	c.LLM.TimeoutSeconds = getEnvAsIntOrDefault("LLM_TIMEOUT_SECONDS", c.LLM.TimeoutSeconds)

	c.Poller.Concurrency = getEnvAsIntOrDefault("POLL_CONCURRENCY", c.Poller.Concurrency)
	c.Poller.FetchTimeoutSeconds = getEnvAsIntOrDefault("FEED_FETCH_TIMEOUT", c.Poller.FetchTimeoutSeconds)
	c.Poller.PageFetch = getEnvAsBoolOrDefault("PAGE_FETCH", c.Poller.PageFetch)

	c.Arxiv.BatchSize = getEnvAsIntOrDefault("ARXIV_BATCH_SIZE", c.Arxiv.BatchSize)
	c.Arxiv.TimeoutSeconds = getEnvAsIntOrDefault("ARXIV_TIMEOUT", c.Arxiv.TimeoutSeconds)

	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnvOrDefault("LOG_FORMAT", c.Logging.Format)
	c.Logging.File = getEnvOrDefault("LOG_FILE", c.Logging.File)
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	return parse.IntOrDefault(os.Getenv(key), defaultValue)
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}

	if c.Database.Path == "" {
		return errors.New("database path cannot be empty")
	}

	switch c.Cache.Type {
	case "file":
		if c.Cache.Dir == "" {
			return errors.New("cache dir cannot be empty when using file cache")
		}
	case "memory":
	case "redis":
		if c.Cache.Redis.Address == "" {
			return errors.New("redis address cannot be empty when using redis cache")
		}
	case "sqlite":
		if c.Cache.SQLitePath == "" {
			return errors.New("sqlite path cannot be empty when using sqlite cache")
		}
	default:
		return fmt.Errorf("cache type must be one of file, memory, redis, sqlite (got %q)", c.Cache.Type)
	}

	if c.LLM.Model == "" {
		return errors.New("llm model cannot be empty")
	}

	if c.LLM.SummaryMaxTokens < 1 {
		return errors.New("summary max tokens must be at least 1")
	}

	if c.Poller.Concurrency < 1 {
		return errors.New("poll concurrency must be at least 1")
	}

	if c.Poller.FetchTimeoutSeconds < 1 {
		return errors.New("feed fetch timeout must be at least 1 second")
	}

	if c.Arxiv.BatchSize < 1 {
		return errors.New("arxiv batch size must be at least 1")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return errors.New("log format must be 'text' or 'json'")
	}

	return nil
}

// LLMEnabled reports whether an API key is configured
func (c *Config) LLMEnabled() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}
