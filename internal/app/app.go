// Package app wires the application together: configuration, database,
// Genkit, the documentation index, the tool registry, and the
// orchestrator. Setup builds the container; Close releases it.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ramdanisyaputra/ai-laravel-docs/internal/config"
	"github.com/ramdanisyaputra/ai-laravel-docs/internal/index"
	"github.com/ramdanisyaputra/ai-laravel-docs/internal/llm"
	"github.com/ramdanisyaputra/ai-laravel-docs/internal/orchestrator"
	"github.com/ramdanisyaputra/ai-laravel-docs/internal/tools"
)

// App is the application container.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	Pool     *pgxpool.Pool

	Index        *index.Store
	LLM          *llm.Client
	Registry     *tools.Registry
	Orchestrator *orchestrator.Orchestrator

	otelCleanup func()
}

// Close releases all resources the container holds.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Debug("shutting down application")
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}
	return nil
}
