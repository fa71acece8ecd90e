// Package assemble turns the final ranked hits into the context payload the
// answer generator consumes, and records the turn's resolved book on the
// conversation state. It is the only writer of that state.
package assemble

import (
	"fmt"
	"strings"

	domintent "github.com/AdhiDevX369-work/doc-rag/internal/domain/intent"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/chunk"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/payload"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/scope"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/session"
)

// crossBookCap limits how many passages a single book may contribute to a
// cross-book answer, so one dominant book cannot crowd out the rest.
const crossBookCap = 2

// Service builds payloads.
type Service struct {
	books BookReader
}

// New creates an assembler backed by the given catalog.
func New(books BookReader) *Service {
	return &Service{books: books}
}

// Assemble converts ranked hits into a payload and updates the session's
// remembered book. For cross-book queries each book is capped to a couple of
// passages. The remembered book changes only when the turn clearly resolves
// to one book: a single-book scope, or a strict majority of passages from one
// book; otherwise it is left untouched. An empty result never changes state.
func (s *Service) Assemble(hits []chunk.Hit, in domintent.Intent, sel scope.Selector, state *session.State) payload.Payload {
	if in == domintent.CrossBook {
		hits = capPerBook(hits, crossBookCap)
	}

	passages := make([]payload.Passage, 0, len(hits))
	for _, h := range hits {
		passages = append(passages, payload.NewPassage(h.Chunk(), h.Score(), s.sourceLine(h.Chunk())))
	}
	pl := payload.New(in, passages)

	if !pl.IsEmpty() {
		if resolved, ok := resolveBook(sel, pl); ok {
			state.SetLastBook(resolved)
		}
	}
	return pl
}

// sourceLine renders the provenance string shown alongside a passage.
func (s *Service) sourceLine(c chunk.Chunk) string {
	title := c.Book()
	author := ""
	if b, err := s.books.Get(c.Book()); err == nil {
		title = b.Title()
		author = b.Author()
	}

	var sb strings.Builder
	sb.WriteString(title)
	if c.IsTOC() {
		sb.WriteString(" | TOC")
	} else if c.Page() > 0 {
		fmt.Fprintf(&sb, " | p.%d", c.Page())
	}
	if sec := c.Section(); sec != "" {
		sb.WriteString(" | § ")
		sb.WriteString(sec)
	}
	if author != "" {
		sb.WriteString(" | by ")
		sb.WriteString(author)
	}
	return sb.String()
}

// resolveBook decides which book, if any, this turn resolved to.
func resolveBook(sel scope.Selector, pl payload.Payload) (string, bool) {
	if sel.IsSingle() {
		return sel.Book(), true
	}
	counts := make(map[string]int)
	for _, p := range pl.Passages() {
		counts[p.Chunk().Book()]++
	}
	total := len(pl.Passages())
	for b, n := range counts {
		if n*2 > total {
			return b, true
		}
	}
	return "", false
}

// capPerBook keeps at most n passages per book, preserving rank order.
func capPerBook(hits []chunk.Hit, n int) []chunk.Hit {
	counts := make(map[string]int)
	out := make([]chunk.Hit, 0, len(hits))
	for _, h := range hits {
		if counts[h.Chunk().Book()] >= n {
			continue
		}
		counts[h.Chunk().Book()]++
		out = append(out, h)
	}
	return out
}
