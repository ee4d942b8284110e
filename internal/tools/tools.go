// Package tools provides the retrieval tools and the tool registry.
//
// A tool is a named, describable unit the planner can select: it expands a
// sub-query into deterministic search variations, retrieves passages from
// the vector index, and asks a summarization model to answer from the
// retrieved context. The registry is populated once at startup and is
// read-only afterwards.
package tools

import (
	"context"
	"errors"

	"github.com/ramdanisyaputra/ai-laravel-docs/internal/index"
	"github.com/ramdanisyaputra/ai-laravel-docs/internal/llm"
)

// Sentinel errors for registry operations.
var (
	// ErrDuplicateTool indicates a tool name was registered twice.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrToolNotFound indicates a lookup for an unregistered tool name.
	ErrToolNotFound = errors.New("tool not found")
)

// FallbackToolName is the universal fallback tool. It must always exist
// in the registry; the orchestrator substitutes it when a plan cannot be
// parsed or every planned entry fails.
const FallbackToolName = "general_search"

// Tool is the single capability the registry holds. The description is
// consumed only by the planner prompt, never by code logic.
type Tool interface {
	// Name returns the unique tool identifier.
	Name() string

	// Description returns what the tool is good for, for the planner.
	Description() string

	// Run answers the sub-query from retrieved documentation context.
	Run(ctx context.Context, subQuery string) (string, error)
}

// Searcher is the vector index capability tools depend on.
// Implemented by index.Store.
type Searcher interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]index.Passage, error)
}

// Completer is the model-call capability tools depend on.
// Implemented by llm.Client.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}
