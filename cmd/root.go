// Package cmd contains the CLI commands.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramdanisyaputra/ai-laravel-docs/internal/app"
	"github.com/ramdanisyaputra/ai-laravel-docs/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "laradocs",
	Short: "AI assistant for the Laravel documentation",
	Long: `laradocs answers questions about Laravel by searching an indexed copy
of the official documentation and synthesizing an answer with an LLM.

Running laradocs with no subcommand starts an interactive chat session.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setupApp loads and validates configuration, builds the application
// container, and makes sure the documentation index exists. The caller
// owns the returned App and must Close it.
func setupApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	a, err := app.Setup(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing application: %w", err)
	}

	if err := a.EnsureIndex(ctx); err != nil {
		if closeErr := a.Close(); closeErr != nil {
			a.Logger.Warn("cleanup after index failure", "error", closeErr)
		}
		return nil, fmt.Errorf("preparing documentation index: %w", err)
	}
	return a, nil
}
