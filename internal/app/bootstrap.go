package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ramdanisyaputra/ai-laravel-docs/internal/corpus"
	"github.com/ramdanisyaputra/ai-laravel-docs/internal/index"
)

// EnsureIndex makes sure the documentation index can serve searches,
// building it from scratch when the chunks table is empty. A populated
// index is reused as-is across restarts.
func (a *App) EnsureIndex(ctx context.Context) error {
	err := a.Index.Ready(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, index.ErrIndexUnavailable) {
		return err
	}

	a.Logger.Info("documentation index is empty, building it now (this takes a few minutes)")
	return a.buildIndex(ctx)
}

// RebuildIndex discards the existing index and builds a fresh one.
func (a *App) RebuildIndex(ctx context.Context) error {
	if err := a.Index.Clear(ctx); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	return a.buildIndex(ctx)
}

// buildIndex scrapes the documentation site, chunks the pages, and
// embeds everything into the index.
func (a *App) buildIndex(ctx context.Context) error {
	cfg := a.Config

	fetcher, err := corpus.NewFetcher(corpus.FetcherConfig{
		BaseURL:     cfg.DocsBaseURL,
		Version:     cfg.DocsVersion,
		Parallelism: cfg.Scraper.Parallelism,
		Delay:       time.Duration(cfg.Scraper.DelayMs) * time.Millisecond,
		Timeout:     time.Duration(cfg.Scraper.TimeoutMs) * time.Millisecond,
		Logger:      a.Logger,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	docs, err := fetcher.Fetch()
	if err != nil {
		return fmt.Errorf("fetching documentation: %w", err)
	}

	chunker, err := corpus.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return err
	}
	chunks := chunker.Split(docs)
	if len(chunks) == 0 {
		return fmt.Errorf("documentation produced no indexable chunks")
	}

	indexed, err := a.Index.Index(ctx, chunks)
	if err != nil {
		return fmt.Errorf("indexing documentation: %w", err)
	}

	a.Logger.Info("documentation index built",
		"pages", len(docs),
		"chunks", indexed,
		"took", time.Since(start).Round(time.Second))
	return nil
}
