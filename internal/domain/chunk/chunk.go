// Package chunk defines the atomic unit of retrieval: a bounded span of book
// text with its metadata, and the per-query hit wrapper the pipeline moves
// between stages.
package chunk

import "fmt"

// Chunk is a retrieved passage. The embedding vector is produced and owned by
// ingestion; the pipeline only reads it.
type Chunk struct {
	id      string
	book    string
	text    string
	page    int
	section string
	toc     bool
	vector  []float32
}

// New validates and creates a Chunk.
func New(id, book, text string, page int, section string, toc bool, vector []float32) (Chunk, error) {
	if id == "" {
		return Chunk{}, fmt.Errorf("chunk id is required")
	}
	if book == "" {
		return Chunk{}, fmt.Errorf("chunk book is required")
	}
	if text == "" {
		return Chunk{}, fmt.Errorf("chunk text is required")
	}
	return Chunk{id: id, book: book, text: text, page: page, section: section, toc: toc, vector: vector}, nil
}

// ID returns the stable chunk identifier.
func (c Chunk) ID() string { return c.id }

// Book returns the owning book identifier.
func (c Chunk) Book() string { return c.book }

// Text returns the passage body.
func (c Chunk) Text() string { return c.text }

// Page returns the source page number, 0 when unknown.
func (c Chunk) Page() int { return c.page }

// Section returns the section or chapter title, "" when unknown.
func (c Chunk) Section() string { return c.section }

// IsTOC reports whether the chunk is table-of-contents content.
func (c Chunk) IsTOC() bool { return c.toc }

// Vector returns the embedding vector used to retrieve the chunk.
func (c Chunk) Vector() []float32 { return c.vector }

// Hit is a chunk retrieved for one query: the chunk, its coarse similarity
// score, and where it came from. Created per query, discarded after the
// pipeline completes.
type Hit struct {
	chunk      Chunk
	score      float64
	collection string
	rank       int
}

// NewHit stamps a chunk with its retrieval provenance.
// rank is the 0-based position within the source collection's result list.
func NewHit(c Chunk, score float64, collection string, rank int) Hit {
	return Hit{chunk: c, score: score, collection: collection, rank: rank}
}

// Chunk returns the retrieved passage.
func (h Hit) Chunk() Chunk { return h.chunk }

// Score returns the coarse similarity score from vector search.
func (h Hit) Score() float64 { return h.score }

// Collection returns the source collection identifier.
func (h Hit) Collection() string { return h.collection }

// Rank returns the hit's position within its source collection.
func (h Hit) Rank() int { return h.rank }

// WithScore returns a copy of the hit carrying a replacement score.
func (h Hit) WithScore(score float64) Hit {
	h.score = score
	return h
}
