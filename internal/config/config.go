// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables with the LARADOCS_ prefix (runtime override)
//  2. Config file (~/.ai-laravel-docs/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: provider, planner/synthesis/summarizer model selection, embedder
//   - Storage: PostgreSQL connection for the pgvector document index
//   - Corpus: Laravel documentation scraper and chunking settings
//   - Retrieval: per-variation top-k and context budget
//   - Serve: HTTP listen address for the API surface
//
// Security: the PostgreSQL password is masked in MarshalJSON and never logged.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation.
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidModelName indicates a model name is empty or malformed.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTopK indicates the retrieval top-k is out of range.
	ErrInvalidTopK = errors.New("invalid top k")

	// ErrInvalidChunking indicates chunk size/overlap values are inconsistent.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrInvalidHistory indicates conversation history bounds are out of range.
	ErrInvalidHistory = errors.New("invalid history configuration")

	// ErrInvalidPostgres indicates the PostgreSQL connection settings are invalid.
	ErrInvalidPostgres = errors.New("invalid PostgreSQL configuration")

	// ErrInvalidDocsURL indicates the documentation base URL is invalid.
	ErrInvalidDocsURL = errors.New("invalid docs base URL")
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGoogleAI = "googleai"
	ProviderOpenAI   = "openai"
)

// Retrieval bounds. TopK is clamped to this range to cap embedding and
// search cost per query variation.
const (
	MinTopK = 1
	MaxTopK = 10
)

// ScraperConfig holds documentation scraper settings.
type ScraperConfig struct {
	// Parallelism is max concurrent requests per domain (default: 2)
	Parallelism int `mapstructure:"parallelism" json:"parallelism"`
	// DelayMs is delay between requests in milliseconds (default: 1000)
	DelayMs int `mapstructure:"delay_ms" json:"delay_ms"`
	// TimeoutMs is request timeout in milliseconds (default: 30000)
	TimeoutMs int `mapstructure:"timeout_ms" json:"timeout_ms"`
}

// OtelConfig holds optional OTLP trace export settings.
type OtelConfig struct {
	Enabled     bool   `mapstructure:"enabled" json:"enabled"`
	Endpoint    string `mapstructure:"endpoint" json:"endpoint"` // host:port of the OTLP HTTP collector
	ServiceName string `mapstructure:"service_name" json:"service_name"`
	Environment string `mapstructure:"environment" json:"environment"`
}

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
type Config struct {
	// AI provider and model configuration.
	// Model names are provider-qualified (e.g., "googleai/gemini-2.5-pro").
	Provider       string `mapstructure:"provider" json:"provider"`
	PlannerModel   string `mapstructure:"planner_model" json:"planner_model"`     // strong model, tool selection
	SynthesisModel string `mapstructure:"synthesis_model" json:"synthesis_model"` // final answer composition
	ToolModel      string `mapstructure:"tool_model" json:"tool_model"`           // default per-tool summarizer
	EmbedderModel  string `mapstructure:"embedder_model" json:"embedder_model"`

	// Conversation memory bounds.
	MaxHistoryTurns int `mapstructure:"max_history_turns" json:"max_history_turns"` // retention ceiling
	HistoryWindow   int `mapstructure:"history_window" json:"history_window"`       // turns included in prompts

	// Retrieval configuration.
	TopK            int `mapstructure:"top_k" json:"top_k"`                         // passages per query variation
	MaxContextChars int `mapstructure:"max_context_chars" json:"max_context_chars"` // per-tool context budget

	// Corpus configuration.
	DocsBaseURL  string        `mapstructure:"docs_base_url" json:"docs_base_url"`
	DocsVersion  string        `mapstructure:"docs_version" json:"docs_version"`
	ChunkSize    int           `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap int           `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	Scraper      ScraperConfig `mapstructure:"scraper" json:"scraper"`

	// Storage configuration.
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Serve mode configuration.
	HTTPAddr string `mapstructure:"http_addr" json:"http_addr"`

	// Observability configuration.
	Otel OtelConfig `mapstructure:"otel" json:"otel"`

	// Logging configuration.
	LogLevel string `mapstructure:"log_level" json:"log_level"` // debug, info, warn, error
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// Load reads configuration from defaults, the optional config file, and
// environment variables, in ascending priority.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("LARADOCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
			// No config file is fine; defaults plus env apply.
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderGoogleAI)
	v.SetDefault("planner_model", "googleai/gemini-2.5-pro")
	v.SetDefault("synthesis_model", "googleai/gemini-2.5-flash")
	v.SetDefault("tool_model", "googleai/gemini-2.5-flash")
	v.SetDefault("embedder_model", "gemini-embedding-001")

	v.SetDefault("max_history_turns", 50)
	v.SetDefault("history_window", 6)

	v.SetDefault("top_k", 3)
	v.SetDefault("max_context_chars", 8000)

	v.SetDefault("docs_base_url", "https://laravel.com")
	v.SetDefault("docs_version", "12.x")
	v.SetDefault("chunk_size", 1000)
	v.SetDefault("chunk_overlap", 200)
	v.SetDefault("scraper.parallelism", 2)
	v.SetDefault("scraper.delay_ms", 1000)
	v.SetDefault("scraper.timeout_ms", 30000)

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "laradocs")
	v.SetDefault("postgres_db_name", "laradocs")
	v.SetDefault("postgres_ssl_mode", "disable")

	v.SetDefault("http_addr", ":8080")

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4318")
	v.SetDefault("otel.service_name", "ai-laravel-docs")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// configDir returns the configuration directory, creating it if needed.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".ai-laravel-docs")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// ConnString builds the PostgreSQL connection URL.
// The password is URL-escaped to handle special characters.
func (c *Config) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:   c.PostgresDBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.PostgresSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// MarshalJSON implements json.Marshaler with sensitive field masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config // avoid recursion
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// maskSecret replaces all but the first two characters of a secret.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 2 {
		return "****"
	}
	return s[:2] + "****"
}
