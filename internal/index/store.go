package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/pgvector/pgvector-go"

	"github.com/ramdanisyaputra/ai-laravel-docs/internal/corpus"
)

// Querier defines the database operations Store needs. The interface is
// defined here, by the consumer, so tests can substitute a fake and the
// pgx implementation stays an internal detail.
type Querier interface {
	// UpsertChunk inserts or replaces one chunk row.
	UpsertChunk(ctx context.Context, p UpsertChunkParams) error

	// SearchChunks returns the nearest rows to the query embedding.
	SearchChunks(ctx context.Context, embedding pgvector.Vector, limit int) ([]ChunkRow, error)

	// CountChunks counts all indexed chunks.
	CountChunks(ctx context.Context) (int64, error)

	// DeleteAllChunks clears the index (used by forced rebuilds).
	DeleteAllChunks(ctx context.Context) error
}

// UpsertChunkParams carries one chunk row for insertion.
type UpsertChunkParams struct {
	ID        string
	Content   string
	Source    string
	Title     string
	Embedding pgvector.Vector
	CreatedAt time.Time
}

// ChunkRow is one search result row.
type ChunkRow struct {
	ID         string
	Content    string
	Source     string
	Title      string
	Similarity float32
	CreatedAt  time.Time
}

// searchTimeout bounds a single embedding+search round trip.
const searchTimeout = 10 * time.Second

// Store manages document chunks with vector search.
// Safe for concurrent use.
type Store struct {
	queries  Querier
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewStore creates a Store.
func NewStore(querier Querier, embedder ai.Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		queries:  querier,
		embedder: embedder,
		logger:   logger,
	}
}

// SimilaritySearch returns up to k passages most similar to query, most
// similar first. k is clamped to [MinK, MaxK].
func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]Passage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	k = clampK(k)

	searchCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	embedding, err := s.embed(searchCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.queries.SearchChunks(searchCtx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}

	passages := make([]Passage, 0, len(rows))
	for _, row := range rows {
		passages = append(passages, Passage{
			ID:         row.ID,
			Content:    row.Content,
			Source:     row.Source,
			Title:      row.Title,
			Similarity: row.Similarity,
			Query:      query,
			CreatedAt:  row.CreatedAt,
		})
	}

	s.logger.Debug("similarity search", "query_len", len(query), "k", k, "hits", len(passages))
	return passages, nil
}

// Index embeds and upserts all chunks. Returns the number of chunks stored.
// Individual chunk failures abort the build: a partially built index would
// silently degrade every future answer.
func (s *Store) Index(ctx context.Context, chunks []corpus.Chunk) (int, error) {
	now := time.Now()
	for i, chunk := range chunks {
		embedding, err := s.embed(ctx, chunk.Content)
		if err != nil {
			return i, fmt.Errorf("embedding chunk %q: %w", chunk.ID, err)
		}

		err = s.queries.UpsertChunk(ctx, UpsertChunkParams{
			ID:        chunk.ID,
			Content:   chunk.Content,
			Source:    chunk.Source,
			Title:     chunk.Title,
			Embedding: embedding,
			CreatedAt: now,
		})
		if err != nil {
			return i, fmt.Errorf("upserting chunk %q: %w", chunk.ID, err)
		}

		if (i+1)%100 == 0 {
			s.logger.Info("indexing progress", "indexed", i+1, "total", len(chunks))
		}
	}

	s.logger.Info("index built", "chunks", len(chunks))
	return len(chunks), nil
}

// Count returns the number of indexed chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	count, err := s.queries.CountChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return int(count), nil
}

// Ready verifies the index holds at least one chunk.
// Returns ErrIndexUnavailable when empty — callers treat this as fatal.
func (s *Store) Ready(ctx context.Context) error {
	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrIndexUnavailable
	}
	return nil
}

// Clear removes all indexed chunks. Used by forced rebuilds only.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.queries.DeleteAllChunks(ctx); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	s.logger.Info("index cleared")
	return nil
}

// embed generates the embedding vector for one text.
func (s *Store) embed(ctx context.Context, text string) (pgvector.Vector, error) {
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(text, nil)},
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("embed: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return pgvector.Vector{}, fmt.Errorf("empty embedding returned")
	}
	return pgvector.NewVector(resp.Embeddings[0].Embedding), nil
}
