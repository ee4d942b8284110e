package config

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a config that passes Validate().
func validConfig() *Config {
	return &Config{
		Provider:         ProviderGoogleAI,
		PlannerModel:     "googleai/gemini-2.5-pro",
		SynthesisModel:   "googleai/gemini-2.5-flash",
		ToolModel:        "googleai/gemini-2.5-flash",
		EmbedderModel:    "gemini-embedding-001",
		MaxHistoryTurns:  50,
		HistoryWindow:    6,
		TopK:             3,
		MaxContextChars:  8000,
		DocsBaseURL:      "https://laravel.com",
		DocsVersion:      "12.x",
		ChunkSize:        1000,
		ChunkOverlap:     200,
		PostgresHost:     "localhost",
		PostgresPort:     5432,
		PostgresUser:     "laradocs",
		PostgresPassword: "secret-password",
		PostgresDBName:   "laradocs",
		PostgresSSLMode:  "disable",
		HTTPAddr:         ":8080",
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"unknown provider", func(c *Config) { c.Provider = "anthropic" }, ErrInvalidProvider},
		{"empty planner model", func(c *Config) { c.PlannerModel = " " }, ErrInvalidModelName},
		{"empty embedder model", func(c *Config) { c.EmbedderModel = "" }, ErrInvalidModelName},
		{"top k too small", func(c *Config) { c.TopK = 0 }, ErrInvalidTopK},
		{"top k too large", func(c *Config) { c.TopK = 11 }, ErrInvalidTopK},
		{"chunk overlap >= size", func(c *Config) { c.ChunkOverlap = 1000 }, ErrInvalidChunking},
		{"negative chunk overlap", func(c *Config) { c.ChunkOverlap = -1 }, ErrInvalidChunking},
		{"history window above ceiling", func(c *Config) { c.HistoryWindow = 51 }, ErrInvalidHistory},
		{"empty postgres host", func(c *Config) { c.PostgresHost = "" }, ErrInvalidPostgres},
		{"bad postgres port", func(c *Config) { c.PostgresPort = 0 }, ErrInvalidPostgres},
		{"bad ssl mode", func(c *Config) { c.PostgresSSLMode = "yes" }, ErrInvalidPostgres},
		{"bad docs url", func(c *Config) { c.DocsBaseURL = "://nope" }, ErrInvalidDocsURL},
		{"ftp docs url", func(c *Config) { c.DocsBaseURL = "ftp://laravel.com" }, ErrInvalidDocsURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConnString(t *testing.T) {
	cfg := validConfig()
	got := cfg.ConnString()

	assert.True(t, strings.HasPrefix(got, "postgres://"), got)
	assert.Contains(t, got, "localhost:5432")
	assert.Contains(t, got, "sslmode=disable")
}

func TestConnString_EscapesPassword(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "p@ss/word"

	got := cfg.ConnString()
	assert.NotContains(t, got, "p@ss/word")
	assert.Contains(t, got, "p%40ss%2Fword")
}

func TestMarshalJSON_MasksPassword(t *testing.T) {
	cfg := validConfig()

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret-password")
	assert.Contains(t, string(data), `"postgres_password":"se****"`)
}

func TestLoad_Defaults(t *testing.T) {
	// Load should succeed with pure defaults (no config file, no env).
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGoogleAI, cfg.Provider)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, "12.x", cfg.DocsVersion)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LARADOCS_TOP_K", "5")
	t.Setenv("LARADOCS_DOCS_VERSION", "11.x")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, "11.x", cfg.DocsVersion)
}
