package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ramdanisyaputra/ai-laravel-docs/internal/app"
	"github.com/ramdanisyaputra/ai-laravel-docs/internal/config"
)

var rebuildIndex bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or rebuild the documentation index",
	Long: `index scrapes the Laravel documentation site, chunks the pages,
embeds them, and stores everything in PostgreSQL. An existing index is
left alone unless --rebuild is given.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&rebuildIndex, "rebuild", false, "discard the existing index and build a fresh one")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	a, err := app.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			a.Logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	if rebuildIndex {
		if err := a.RebuildIndex(ctx); err != nil {
			return err
		}
	} else if err := a.EnsureIndex(ctx); err != nil {
		return err
	}

	count, err := a.Index.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting chunks: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Index ready: %d chunks.\n", count)
	return nil
}
