package index

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgxQuerier implements Querier against a pgx connection pool.
// The chunks table is created by the embedded migrations in db/.
type PgxQuerier struct {
	pool *pgxpool.Pool
}

// NewPgxQuerier creates the production Querier.
func NewPgxQuerier(pool *pgxpool.Pool) *PgxQuerier {
	return &PgxQuerier{pool: pool}
}

const upsertChunkSQL = `
INSERT INTO chunks (id, content, source, title, embedding, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
	content = EXCLUDED.content,
	source = EXCLUDED.source,
	title = EXCLUDED.title,
	embedding = EXCLUDED.embedding,
	created_at = EXCLUDED.created_at
`

// UpsertChunk inserts or replaces one chunk row.
func (q *PgxQuerier) UpsertChunk(ctx context.Context, p UpsertChunkParams) error {
	_, err := q.pool.Exec(ctx, upsertChunkSQL,
		p.ID, p.Content, p.Source, p.Title, p.Embedding, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert chunk: %w", err)
	}
	return nil
}

// searchChunksSQL orders by cosine distance; similarity = 1 - distance.
const searchChunksSQL = `
SELECT id, content, source, title,
	1 - (embedding <=> $1) AS similarity,
	created_at
FROM chunks
ORDER BY embedding <=> $1
LIMIT $2
`

// SearchChunks returns the nearest rows to the query embedding.
func (q *PgxQuerier) SearchChunks(ctx context.Context, embedding pgvector.Vector, limit int) ([]ChunkRow, error) {
	rows, err := q.pool.Query(ctx, searchChunksSQL, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ChunkRow, error) {
		var r ChunkRow
		err := row.Scan(&r.ID, &r.Content, &r.Source, &r.Title, &r.Similarity, &r.CreatedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning chunk rows: %w", err)
	}
	return results, nil
}

// CountChunks counts all indexed chunks.
func (q *PgxQuerier) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	if err := q.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

// DeleteAllChunks clears the index.
func (q *PgxQuerier) DeleteAllChunks(ctx context.Context) error {
	if _, err := q.pool.Exec(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}
