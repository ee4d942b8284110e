package corpus

import (
	"fmt"
	"strings"
)

// Chunker splits documents into fixed-size chunks with overlap.
type Chunker struct {
	size    int // target chunk size in characters
	overlap int // characters shared between consecutive chunks
}

// NewChunker creates a chunker. size must be positive and overlap must be
// smaller than size; config validation enforces this upstream, so the
// constructor only normalizes degenerate values.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d", overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split chunks all documents, skipping pages whose extracted content is
// too short to be useful (navigation stubs, redirects).
func (c *Chunker) Split(docs []Document) []Chunk {
	const minContentLen = 200

	var chunks []Chunk
	for _, doc := range docs {
		content := strings.TrimSpace(doc.Content)
		if len(content) < minContentLen {
			continue
		}
		chunks = append(chunks, c.splitOne(doc, content)...)
	}
	return chunks
}

// splitOne splits a single document, preferring to cut at whitespace so
// words are not bisected mid-chunk.
func (c *Chunker) splitOne(doc Document, content string) []Chunk {
	var chunks []Chunk

	step := c.size - c.overlap
	position := 0
	for start := 0; start < len(content); start += step {
		end := start + c.size
		if end > len(content) {
			end = len(content)
		} else if cut := strings.LastIndexAny(content[start:end], " \n\t"); cut > step {
			// Cut at the last whitespace, but only inside the overlap
			// region so consecutive chunks never leave a gap.
			end = start + cut
		}

		chunks = append(chunks, Chunk{
			ID:       ChunkID(doc.Source, position),
			Content:  content[start:end],
			Source:   doc.Source,
			Title:    doc.Title,
			Position: position,
		})
		position++

		if end == len(content) {
			break
		}
	}
	return chunks
}
