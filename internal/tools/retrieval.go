package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ramdanisyaputra/ai-laravel-docs/internal/index"
	"github.com/ramdanisyaputra/ai-laravel-docs/internal/llm"
)

// NoResultsMessage is returned when no passage matches any search
// variation. Zero hits is a low-confidence answer, never an error, so the
// orchestrator handles all tool outputs uniformly.
const NoResultsMessage = "No relevant documentation was found for this query."

// RetrievalConfig configures one retrieval tool.
type RetrievalConfig struct {
	// Name is the unique tool identifier (e.g., "version_search").
	Name string
	// Description tells the planner when to pick this tool.
	Description string
	// SystemPrompt frames the summarization call. The retrieved context
	// block is appended to it.
	SystemPrompt string
	// Expansions are deterministic query templates. Templates containing
	// %s are instantiated with the sub-query; others are searched verbatim.
	Expansions []string
	// TopK is the passage count per variation (clamped by the index).
	TopK int
	// MaxContextChars bounds the concatenated context block.
	MaxContextChars int
	// Model is the provider-qualified summarization model.
	Model string
}

// RetrievalTool combines query expansion, vector search, and a
// summarization model call behind the Tool interface.
type RetrievalTool struct {
	cfg       RetrievalConfig
	searcher  Searcher
	completer Completer
	logger    *slog.Logger
}

// NewRetrievalTool creates a retrieval tool.
func NewRetrievalTool(cfg RetrievalConfig, searcher Searcher, completer Completer, logger *slog.Logger) (*RetrievalTool, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	if searcher == nil || completer == nil {
		return nil, fmt.Errorf("tool %q: searcher and completer are required", cfg.Name)
	}
	if len(cfg.Expansions) == 0 {
		cfg.Expansions = []string{"%s"}
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 8000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetrievalTool{
		cfg:       cfg,
		searcher:  searcher,
		completer: completer,
		logger:    logger.With("tool", cfg.Name),
	}, nil
}

// Name implements Tool.
func (t *RetrievalTool) Name() string { return t.cfg.Name }

// Description implements Tool.
func (t *RetrievalTool) Description() string { return t.cfg.Description }

// Run retrieves context for subQuery and summarizes it.
//
// Search variations run in a fixed order; passages are deduplicated by
// chunk ID with the first occurrence winning, then the context block is
// assembled highest-similarity first within the character budget.
func (t *RetrievalTool) Run(ctx context.Context, subQuery string) (string, error) {
	subQuery = strings.TrimSpace(subQuery)
	if subQuery == "" {
		return "", fmt.Errorf("tool %q: sub-query must not be empty", t.cfg.Name)
	}

	passages, err := t.retrieve(ctx, subQuery)
	if err != nil {
		return "", fmt.Errorf("tool %q: %w", t.cfg.Name, err)
	}

	if len(passages) == 0 {
		t.logger.Debug("no passages found", "sub_query", subQuery)
		return NoResultsMessage, nil
	}

	contextBlock := buildContext(passages, t.cfg.MaxContextChars)

	answer, err := t.completer.Complete(ctx, llm.Request{
		Model:  t.cfg.Model,
		System: t.cfg.SystemPrompt + "\n\nContext:\n" + contextBlock,
		Prompt: subQuery,
	})
	if err != nil {
		return "", fmt.Errorf("tool %q: summarization: %w", t.cfg.Name, err)
	}

	t.logger.Debug("tool completed", "sub_query", subQuery, "passages", len(passages))
	return answer, nil
}

// retrieve runs every expansion variation and merges the hits,
// deduplicated by chunk ID.
func (t *RetrievalTool) retrieve(ctx context.Context, subQuery string) ([]index.Passage, error) {
	var (
		merged []index.Passage
		seen   = make(map[string]struct{})
	)

	for _, variation := range t.expand(subQuery) {
		passages, err := t.searcher.SimilaritySearch(ctx, variation, t.cfg.TopK)
		if err != nil {
			// Index failures are not recoverable per query; propagate so
			// the orchestrator records a tool-level failure.
			return nil, fmt.Errorf("searching %q: %w", variation, err)
		}
		for _, p := range passages {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return merged, nil
}

// expand instantiates the expansion templates for subQuery.
// Purely deterministic: no model calls, so expansion cost is bounded.
func (t *RetrievalTool) expand(subQuery string) []string {
	variations := make([]string, 0, len(t.cfg.Expansions))
	seen := make(map[string]struct{}, len(t.cfg.Expansions))
	for _, tmpl := range t.cfg.Expansions {
		v := tmpl
		if strings.Contains(tmpl, "%s") {
			v = fmt.Sprintf(tmpl, subQuery)
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		variations = append(variations, v)
	}
	return variations
}

// buildContext concatenates passages into a numbered context block,
// highest similarity first, truncating the lowest-similarity passages
// once the character budget is exhausted.
func buildContext(passages []index.Passage, budget int) string {
	ordered := make([]index.Passage, len(passages))
	copy(ordered, passages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Similarity > ordered[j].Similarity
	})

	var b strings.Builder
	for i, p := range ordered {
		block := fmt.Sprintf("Document %d (%s):\n%s\n\n", i+1, p.Source, p.Content)
		if b.Len()+len(block) > budget {
			break
		}
		b.WriteString(block)
	}

	// At least one passage must survive even when it alone exceeds the
	// budget; truncate it instead of returning an empty context.
	if b.Len() == 0 && len(ordered) > 0 {
		block := fmt.Sprintf("Document 1 (%s):\n%s", ordered[0].Source, ordered[0].Content)
		if len(block) > budget {
			block = block[:budget]
		}
		return block
	}

	return strings.TrimSpace(b.String())
}
