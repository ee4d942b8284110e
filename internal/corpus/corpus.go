// Package corpus fetches and chunks the Laravel documentation corpus.
//
// The fetcher scrapes a fixed set of documentation pages with bounded
// per-domain parallelism and politeness delay, extracting the main article
// content from each page. The chunker splits raw documents into
// fixed-size, overlapping chunks — the atomic retrieval unit for the
// vector index.
package corpus

import "fmt"

// Document is one raw documentation page.
type Document struct {
	// Source is the origin URL path (e.g., "/docs/12.x/routing").
	Source string
	// Title is the extracted page title, may be empty.
	Title string
	// Content is the extracted main text of the page.
	Content string
}

// Chunk is a bounded-size slice of a Document. Immutable once created.
type Chunk struct {
	// ID is the stable chunk identifier, derived from the source path
	// and the chunk's position (e.g., "laravel:/docs/12.x/routing#0002").
	ID string
	// Content is the chunk text.
	Content string
	// Source is the origin URL path of the parent document.
	Source string
	// Title is the parent document's title.
	Title string
	// Position is the zero-based chunk index within the parent document.
	Position int
}

// ChunkID builds the stable identifier for a chunk of the given source.
func ChunkID(source string, position int) string {
	return fmt.Sprintf("laravel:%s#%04d", source, position)
}
