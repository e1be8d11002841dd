// Package config handles application configuration using Viper.
// Viper supports YAML files, environment variables, and defaults, merged in priority order.
// A .env file in the working directory is loaded first (godotenv), so the
// usual BRAVE_API_KEY / OPENROUTER_API_KEY setup works without exporting anything.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fleveque/company-enricher/internal/model"
)

// Config is the root configuration struct. Nested structs organize related settings.
// `mapstructure` tags tell Viper how to map YAML/env keys to struct fields.
type Config struct {
	Search    SearchConfig    `mapstructure:"search"`
	Model     ModelConfig     `mapstructure:"model"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type SearchConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Count         int           `mapstructure:"count"`
	Market        string        `mapstructure:"market"`
	SafeSearch    string        `mapstructure:"safe_search"`
	PostCallDelay time.Duration `mapstructure:"post_call_delay"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type ModelConfig struct {
	// Provider is "openrouter" (any OpenAI-compatible endpoint) or "anthropic".
	Provider    string           `mapstructure:"provider"`
	Name        string           `mapstructure:"name"`
	Temperature float64          `mapstructure:"temperature"`
	MaxTokens   int              `mapstructure:"max_tokens"`
	Timeout     time.Duration    `mapstructure:"timeout"`
	MaxAttempts int              `mapstructure:"max_attempts"`
	BackoffBase time.Duration    `mapstructure:"backoff_base"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Anthropic   AnthropicConfig  `mapstructure:"anthropic"`
}

type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	// Referer and Title are sent as OpenRouter attribution headers.
	Referer string `mapstructure:"referer"`
	Title   string `mapstructure:"title"`
}

type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type BatchConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// WriteTimeout must cover a full enrichment: several searches plus
	// model calls with retries.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

type AuthConfig struct {
	APIKeys   []string `mapstructure:"api_keys"`
	AdminKeys []string `mapstructure:"admin_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default model names per provider. The anthropic default applies only when
// no model name was configured.
const (
	DefaultOpenRouterModel = "deepseek/deepseek-chat-v3.1:free"
	DefaultAnthropicModel  = "claude-sonnet-4-5"
)

// legacyEnv maps config keys to the plain environment variable names the
// tool has always accepted. ENRICHER_-prefixed names take precedence.
var legacyEnv = map[string]string{
	"search.api_key":           "BRAVE_API_KEY",
	"search.count":             "BRAVE_SEARCH_COUNT",
	"model.openrouter.api_key": "OPENROUTER_API_KEY",
	"model.anthropic.api_key":  "ANTHROPIC_API_KEY",
	"model.name":               "DEEPSEEK_MODEL",
	"model.temperature":        "DEEPSEEK_TEMPERATURE",
	"model.max_tokens":         "DEEPSEEK_MAX_TOKENS",
}

// Load reads configuration from .env, a YAML file and environment variables.
// In Go, functions return errors as the last return value; callers must check them.
func Load(configPath string) (*Config, error) {
	// .env is optional. Existing environment variables are never overridden.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	// Defaults apply when neither file nor env provides a value
	v.SetDefault("search.base_url", "https://api.search.brave.com/res/v1/web/search")
	v.SetDefault("search.count", 10)
	v.SetDefault("search.market", "en-US")
	v.SetDefault("search.safe_search", "moderate")
	v.SetDefault("search.post_call_delay", time.Second)
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("model.provider", "openrouter")
	v.SetDefault("model.name", DefaultOpenRouterModel)
	v.SetDefault("model.temperature", 0.3)
	v.SetDefault("model.max_tokens", 2000)
	v.SetDefault("model.timeout", 60*time.Second)
	v.SetDefault("model.max_attempts", 3)
	v.SetDefault("model.backoff_base", time.Second)
	v.SetDefault("model.openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("model.openrouter.referer", "https://github.com/fleveque/company-enricher")
	v.SetDefault("model.openrouter.title", "Company Enricher")
	v.SetDefault("batch.delay", 2*time.Second)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("storage.database_path", "./storage/enricher.db")
	v.SetDefault("auth.api_keys", []string{})
	v.SetDefault("auth.admin_keys", []string{})
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("rate_limit.requests_per_second", 2)
	v.SetDefault("rate_limit.burst", 5)
	v.SetDefault("log.level", "info")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Read config file (ignore "not found": defaults + env are enough)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	// ENRICHER_ prefix + nested keys: ENRICHER_SERVER_PORT=9090 → server.port=9090
	v.SetEnvPrefix("ENRICHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := "ENRICHER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// The model.name default only makes sense for OpenRouter.
	if strings.EqualFold(cfg.Model.Provider, "anthropic") && cfg.Model.Name == DefaultOpenRouterModel {
		cfg.Model.Name = DefaultAnthropicModel
	}

	return &cfg, nil
}

// Validate checks the settings needed to call external providers. It runs
// before any network activity so a missing key fails fast.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Search.APIKey) == "" {
		problems = append(problems, "BRAVE_API_KEY (search.api_key) is required")
	}

	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		problems = append(problems, "model.temperature must be between 0 and 2")
	}

	switch strings.ToLower(c.Model.Provider) {
	case "openrouter":
		if strings.TrimSpace(c.Model.OpenRouter.APIKey) == "" {
			problems = append(problems, "OPENROUTER_API_KEY (model.openrouter.api_key) is required")
		}
		// go-openai tags temperature with omitempty, so zero would silently
		// become the provider's default.
		if c.Model.Temperature == 0 {
			problems = append(problems, "model.temperature must be greater than 0 for openrouter")
		}
	case "anthropic":
		if strings.TrimSpace(c.Model.Anthropic.APIKey) == "" {
			problems = append(problems, "ANTHROPIC_API_KEY (model.anthropic.api_key) is required")
		}
		if c.Model.Temperature > 1 {
			problems = append(problems, "model.temperature must be at most 1 for anthropic")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown model.provider %q", c.Model.Provider))
	}
	if c.Model.MaxTokens <= 0 {
		problems = append(problems, "model.max_tokens must be positive")
	}
	if c.Model.MaxAttempts < 1 {
		problems = append(problems, "model.max_attempts must be at least 1")
	}
	if c.Search.Count < 1 || c.Search.Count > 20 {
		problems = append(problems, "search.count must be between 1 and 20")
	}
	if c.Batch.Delay < 0 {
		problems = append(problems, "batch.delay must not be negative")
	}

	if len(problems) > 0 {
		return &model.ConfigurationError{Message: strings.Join(problems, "; ")}
	}
	return nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
