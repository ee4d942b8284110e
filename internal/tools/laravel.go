package tools

import (
	"fmt"
	"log/slog"
)

// Specialist system prompts for the built-in tools. Each instructs the
// summarization model to answer strictly from the retrieved context.
const (
	versionSystemPrompt = `You are a Laravel version specialist. Analyze the documentation context and extract version information: the current version number, release notes, and upgrade guidance. Answer strictly from the context; if it does not contain the answer, say so.`

	featureSystemPrompt = `You are a Laravel feature specialist. Answer strictly from the provided documentation context. Provide clear explanations of how the feature works, code examples exactly as they appear in the docs, step-by-step implementation guides, and prerequisites. Do not use outside knowledge; if the context does not contain the answer, say so.`

	installationSystemPrompt = `You are a Laravel installation specialist. Answer strictly from the provided documentation context. Provide system requirements, step-by-step installation instructions, command examples, and post-installation setup steps. Do not use outside knowledge; if the context does not contain the answer, say so.`

	generalSystemPrompt = `You are a Laravel documentation specialist. Answer strictly from the provided documentation context. Provide clear, accurate information, code examples when available, and practical guidance. Do not use outside knowledge; if the context does not contain the answer, say so.`
)

// BuiltinConfig carries the shared settings for the built-in tools.
type BuiltinConfig struct {
	// Model is the provider-qualified summarization model.
	Model string
	// TopK is the passage count per search variation.
	TopK int
	// MaxContextChars bounds each tool's context block.
	MaxContextChars int
}

// RegisterBuiltins registers the four built-in Laravel documentation
// tools, including the universal fallback tool. Fails fast on any
// duplicate registration.
func RegisterBuiltins(reg *Registry, cfg BuiltinConfig, searcher Searcher, completer Completer, logger *slog.Logger) error {
	configs := []RetrievalConfig{
		{
			Name:         "version_search",
			Description:  "Search for Laravel version information, release notes, upgrade guides, or version-specific features",
			SystemPrompt: versionSystemPrompt,
			Expansions: []string{
				"%s version",
				"Laravel version",
				"release notes",
				"upgrade guide",
				"Laravel 12.x",
				"Laravel 11.x",
				"Laravel 10.x",
				"current version",
			},
		},
		{
			Name:         "feature_search",
			Description:  "Search for specific Laravel features like middleware, routing, Eloquent, validation, authentication, etc.",
			SystemPrompt: featureSystemPrompt,
			Expansions: []string{
				"Laravel %s",
				"how to %s",
				"%s implementation",
				"%s configuration",
				"%s example",
				"%s tutorial",
			},
		},
		{
			Name:         "installation_search",
			Description:  "Search for ONLY Laravel installation, setup, requirements, and getting started information",
			SystemPrompt: installationSystemPrompt,
			Expansions: []string{
				"Laravel installation",
				"install Laravel",
				"Laravel setup",
				"Laravel requirements",
				"Laravel getting started",
				"%s install",
				"%s composer",
			},
		},
		{
			Name:         FallbackToolName,
			Description:  "General Laravel documentation search for any Laravel-related topics not covered by other tools",
			SystemPrompt: generalSystemPrompt,
			Expansions: []string{
				"%s",
				"Laravel %s",
				"%s documentation",
				"%s guide",
			},
		},
	}

	for _, tc := range configs {
		tc.Model = cfg.Model
		tc.TopK = cfg.TopK
		tc.MaxContextChars = cfg.MaxContextChars

		tool, err := NewRetrievalTool(tc, searcher, completer, logger)
		if err != nil {
			return fmt.Errorf("building tool %q: %w", tc.Name, err)
		}
		if err := reg.Register(tool); err != nil {
			return fmt.Errorf("registering tool %q: %w", tc.Name, err)
		}
	}

	return nil
}
