// Package intent maps a raw query plus conversational state to a resolved
// intent and search scope. Classification is deterministic and never mutates
// the state; recording the turn's book is the context assembler's job.
package intent

import (
	"fmt"
	"strings"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
	domintent "github.com/AdhiDevX369-work/doc-rag/internal/domain/intent"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/scope"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/session"
)

// Classification is the classifier's verdict for one query.
//
// TOCBias is carried separately from the intent because a followup can ask a
// structure question ("what chapters does it have?"): the intent stays
// FOLLOWUP for scope resolution while retrieval still prioritizes
// table-of-contents chunks.
type Classification struct {
	Intent  domintent.Intent
	Scope   scope.Selector
	TOCBias bool
}

// Service classifies queries.
type Service struct {
	catalog BookCatalog
	rules   Rules
}

// New creates a classifier with the default cue tables.
func New(catalog BookCatalog) *Service {
	return &Service{catalog: catalog, rules: DefaultRules()}
}

// WithRules replaces the cue tables.
func (s *Service) WithRules(r Rules) *Service {
	s.rules = r
	return s
}

// Classify resolves the intent, scope, and TOC bias for a query.
//
// Precedence: explicit book filter, then a book signal in the text, then
// cross-book cues, then followup/structure against the remembered book, then
// structure over all books, then the general default. A followup is only
// possible while the state remembers a book that is still in the catalog.
func (s *Service) Classify(q domain.Query, state *session.State) (Classification, error) {
	text := strings.ToLower(q.Text())
	structural := s.rules.HasStructureCue(text)

	if q.HasBookFilter() {
		b, err := s.catalog.Get(q.BookFilter())
		if err != nil {
			return Classification{}, fmt.Errorf("resolve book filter: %w", err)
		}
		return s.singleBook(b.ID(), structural)
	}

	if b, ok := s.catalog.MatchBook(text); ok {
		return s.singleBook(b.ID(), structural)
	}

	if s.rules.HasCrossBookCue(text) {
		sel, err := scope.Books(s.catalog.Collections())
		if err != nil {
			return Classification{}, fmt.Errorf("all-books scope: %w", err)
		}
		return Classification{Intent: domintent.CrossBook, Scope: sel, TOCBias: structural}, nil
	}

	if last := state.LastBook(); last != "" {
		if _, err := s.catalog.Get(last); err == nil {
			if s.rules.IsFollowup(text) {
				sel, err := scope.Single(last)
				if err != nil {
					return Classification{}, err
				}
				return Classification{Intent: domintent.Followup, Scope: sel, TOCBias: structural}, nil
			}
			if structural {
				sel, err := scope.Single(last)
				if err != nil {
					return Classification{}, err
				}
				return Classification{Intent: domintent.Structure, Scope: sel, TOCBias: true}, nil
			}
		}
	}

	sel, err := scope.Books(s.catalog.Collections())
	if err != nil {
		return Classification{}, fmt.Errorf("all-books scope: %w", err)
	}
	if structural {
		return Classification{Intent: domintent.Structure, Scope: sel, TOCBias: true}, nil
	}
	return Classification{Intent: domintent.General, Scope: sel}, nil
}

func (s *Service) singleBook(id string, structural bool) (Classification, error) {
	sel, err := scope.Single(id)
	if err != nil {
		return Classification{}, err
	}
	in := domintent.SpecificBook
	if structural {
		in = domintent.Structure
	}
	return Classification{Intent: in, Scope: sel, TOCBias: structural}, nil
}
