package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for consistency.
// It returns a sentinel-wrapped error for the first problem found so
// callers can match with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	switch c.Provider {
	case ProviderGoogleAI, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: %q (supported: googleai, openai)", ErrInvalidProvider, c.Provider)
	}

	for _, m := range []struct {
		name  string
		value string
	}{
		{"planner_model", c.PlannerModel},
		{"synthesis_model", c.SynthesisModel},
		{"tool_model", c.ToolModel},
	} {
		if strings.TrimSpace(m.value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidModelName, m.name)
		}
	}
	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder_model must not be empty", ErrInvalidModelName)
	}

	if c.TopK < MinTopK || c.TopK > MaxTopK {
		return fmt.Errorf("%w: top_k must be in [%d, %d], got %d", ErrInvalidTopK, MinTopK, MaxTopK, c.TopK)
	}
	if c.MaxContextChars < 500 {
		return fmt.Errorf("%w: max_context_chars must be at least 500, got %d", ErrInvalidTopK, c.MaxContextChars)
	}

	if c.ChunkSize < 100 {
		return fmt.Errorf("%w: chunk_size must be at least 100, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size), got %d", ErrInvalidChunking, c.ChunkOverlap)
	}

	if c.MaxHistoryTurns < 2 {
		return fmt.Errorf("%w: max_history_turns must be at least 2, got %d", ErrInvalidHistory, c.MaxHistoryTurns)
	}
	if c.HistoryWindow < 0 || c.HistoryWindow > c.MaxHistoryTurns {
		return fmt.Errorf("%w: history_window must be in [0, max_history_turns], got %d", ErrInvalidHistory, c.HistoryWindow)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalidPostgres)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: port must be in [1, 65535], got %d", ErrInvalidPostgres, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name must not be empty", ErrInvalidPostgres)
	}
	switch c.PostgresSSLMode {
	case "disable", "require", "verify-ca", "verify-full", "prefer", "allow":
	default:
		return fmt.Errorf("%w: unsupported ssl mode %q", ErrInvalidPostgres, c.PostgresSSLMode)
	}

	u, err := url.Parse(c.DocsBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidDocsURL, c.DocsBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidDocsURL, u.Scheme)
	}

	return nil
}
