// Package index provides the pgvector-backed document index.
//
// Store embeds document chunks with a Genkit embedder and persists them in
// PostgreSQL with pgvector. Similarity search embeds the query and runs a
// cosine-distance nearest-neighbor scan. The index is built once at
// startup (or by the index command) and is read-only afterwards.
package index

import (
	"errors"
	"time"
)

// Sentinel errors for index operations.
var (
	// ErrIndexUnavailable indicates no index has been built yet.
	// Treated as fatal at startup, never handled per query.
	ErrIndexUnavailable = errors.New("vector index unavailable: no documents indexed")

	// ErrEmptyQuery indicates a similarity search with an empty query.
	ErrEmptyQuery = errors.New("search query must not be empty")
)

// Bounds on the per-search result count.
const (
	MinK = 1
	MaxK = 10
)

// Passage is one similarity search hit: a stored chunk plus the score and
// query that produced it. Transient, scoped to one search call.
type Passage struct {
	// ID is the stable chunk identifier.
	ID string
	// Content is the chunk text.
	Content string
	// Source is the origin URL path of the chunk.
	Source string
	// Title is the parent document title.
	Title string
	// Similarity is the cosine similarity to the query (0–1, higher is closer).
	Similarity float32
	// Query is the search query that retrieved this passage.
	Query string
	// CreatedAt is when the chunk was indexed.
	CreatedAt time.Time
}

// clampK bounds k to [MinK, MaxK] to cap search cost.
func clampK(k int) int {
	if k < MinK {
		return MinK
	}
	if k > MaxK {
		return MaxK
	}
	return k
}
