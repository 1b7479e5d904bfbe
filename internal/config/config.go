// Package config loads per-environment settings from a TOML file. Secrets
// never live in the file; they come from the environment (optionally via .env).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// metrics
	MetricsHost string `toml:"metrics_host"`
	MetricsPort int    `toml:"metrics_port"`
	// storage: "memory" or "postgres"
	StorageBackend string `toml:"storage_backend"`
	// transcripts: "memory" or "redis"
	TranscriptBackend string `toml:"transcript_backend"`
	RedisHost         string `toml:"redis_host"`
	RedisPort         int    `toml:"redis_port"`
	ChatRateLimit     int    `toml:"chat_rate_limit_per_min"`
	// ai provider
	OpenAIBaseURL     string   `toml:"openai_base_url"`
	ChatModel         string   `toml:"chat_model"`
	ChatTemperature   *float64 `toml:"chat_temperature"`
	QuickCoachModel   string   `toml:"quick_coach_model"`
	MealTextModel     string   `toml:"meal_text_model"`
	MealPhotoModel    string   `toml:"meal_photo_model"`
	LLMTimeoutSeconds int      `toml:"llm_timeout_seconds"`
	// feeds
	NewsFeedURL        string `toml:"news_feed_url"`
	DealsAPIURL        string `toml:"deals_api_url"`
	FeedTimeoutSeconds int    `toml:"feed_timeout_seconds"`
	FeedCacheSeconds   int    `toml:"feed_cache_seconds"`
	// session
	SessionCookie  string `toml:"session_cookie"`
	SessionMaxDays int    `toml:"session_max_days"`

	Secrets Secrets `toml:"-"`
}

// Secrets are read from the environment only.
type Secrets struct {
	OpenAIAPIKey  string
	NewsAPIKey    string
	DatabaseURL   string
	RedisPassword string
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path, picks env's table, fills defaults and
// reads secrets from the environment.
func Load(path, env string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no [%s] table in %s", env, path)
	}
	cfg.applyDefaults()
	cfg.Secrets = SecretsFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SecretsFromEnv reads the credential environment variables.
func SecretsFromEnv() Secrets {
	return Secrets{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		NewsAPIKey:    os.Getenv("NEWSAPI_KEY"),
		DatabaseURL:   os.Getenv("DB_URL"),
		RedisPassword: os.Getenv("REDIS_PASS"),
	}
}

// DefaultChatTemperature matches the provider's own default sampling.
const DefaultChatTemperature = 1.0

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.StorageBackend == "" {
		c.StorageBackend = "memory"
	}
	if c.TranscriptBackend == "" {
		c.TranscriptBackend = "memory"
	}
	if c.RedisHost == "" {
		c.RedisHost = "localhost"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.ChatModel == "" {
		c.ChatModel = "gpt-4o-mini"
	}
	if c.ChatTemperature == nil {
		t := DefaultChatTemperature
		c.ChatTemperature = &t
	}
	if c.QuickCoachModel == "" {
		c.QuickCoachModel = "gpt-4.1-mini"
	}
	if c.MealTextModel == "" {
		c.MealTextModel = "gpt-4.1-mini"
	}
	if c.MealPhotoModel == "" {
		c.MealPhotoModel = "gpt-4o-mini"
	}
	if c.LLMTimeoutSeconds <= 0 {
		c.LLMTimeoutSeconds = 20
	}
	if c.FeedTimeoutSeconds <= 0 {
		c.FeedTimeoutSeconds = 15
	}
	if c.FeedCacheSeconds < 0 {
		c.FeedCacheSeconds = 0
	}
	if c.SessionCookie == "" {
		c.SessionCookie = "nutrimind_session"
	}
	if c.SessionMaxDays <= 0 {
		c.SessionMaxDays = 7
	}
}

// Validate checks backend selections and their required settings.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "memory":
	case "postgres":
		if c.Secrets.DatabaseURL == "" {
			return fmt.Errorf("storage_backend postgres needs DB_URL")
		}
	default:
		return fmt.Errorf("unknown storage_backend: %s", c.StorageBackend)
	}
	switch c.TranscriptBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown transcript_backend: %s", c.TranscriptBackend)
	}
	if t := c.ChatTemperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("chat_temperature must be between 0 and 2, got %v", *t)
	}
	return nil
}

// UsesRedis reports whether any component needs a redis client.
func (c *Config) UsesRedis() bool {
	return c.TranscriptBackend == "redis" || c.ChatRateLimit > 0
}

// ChatTemp returns the configured chat temperature or the default.
func (c *Config) ChatTemp() float64 {
	if c.ChatTemperature == nil {
		return DefaultChatTemperature
	}
	return *c.ChatTemperature
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.FeedTimeoutSeconds) * time.Second
}

func (c *Config) SessionMaxAge() time.Duration {
	return time.Duration(c.SessionMaxDays) * 24 * time.Hour
}
