// Package payload defines the pipeline's final output: the ranked, deduplicated
// context handed to generation.
package payload

import (
	"fmt"
	"strings"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain/chunk"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/intent"
)

// Passage is one selected chunk with its final score and formatted provenance.
type Passage struct {
	chunk  chunk.Chunk
	score  float64
	source string
}

// NewPassage creates a passage.
func NewPassage(c chunk.Chunk, score float64, source string) Passage {
	return Passage{chunk: c, score: score, source: source}
}

// Chunk returns the underlying chunk.
func (p Passage) Chunk() chunk.Chunk { return p.chunk }

// Score returns the final relevance score.
func (p Passage) Score() float64 { return p.score }

// Source returns the human-readable provenance line.
func (p Passage) Source() string { return p.source }

// Payload is the assembled context window: ordered passages plus the resolved
// intent. An empty payload is a legitimate terminal outcome, not an error.
type Payload struct {
	intent   intent.Intent
	passages []Passage
	books    []string
}

// New creates a payload. books lists the distinct books contributing passages,
// in first-appearance order.
func New(in intent.Intent, passages []Passage) Payload {
	var books []string
	seen := make(map[string]bool)
	for _, p := range passages {
		b := p.chunk.Book()
		if !seen[b] {
			seen[b] = true
			books = append(books, b)
		}
	}
	return Payload{intent: in, passages: passages, books: books}
}

// Intent returns the resolved intent for the turn.
func (p Payload) Intent() intent.Intent { return p.intent }

// Passages returns the selected passages in rank order.
func (p Payload) Passages() []Passage { return p.passages }

// Books returns the distinct contributing books in first-appearance order.
func (p Payload) Books() []string { return p.books }

// IsEmpty reports whether no relevant passages were found.
func (p Payload) IsEmpty() bool { return len(p.passages) == 0 }

// ContextText renders the passages as the generation context block, each
// labeled with its ordinal and owning book.
func (p Payload) ContextText() string {
	parts := make([]string, 0, len(p.passages))
	for i, ps := range p.passages {
		parts = append(parts, fmt.Sprintf("[Source %d - %s]\n%s", i+1, ps.chunk.Book(), ps.chunk.Text()))
	}
	return strings.Join(parts, "\n\n---\n\n")
}
