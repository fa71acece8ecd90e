// Package generate produces the grounded answer for a retrieval payload and
// validates it against the context before it reaches the user.
package generate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domintent "github.com/AdhiDevX369-work/doc-rag/internal/domain/intent"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/payload"
	"github.com/AdhiDevX369-work/doc-rag/internal/logger"
)

// maxCorrectionAttempts bounds the rewrite loop when validation fails.
const maxCorrectionAttempts = 1

// relevanceThreshold is the minimum query/context word overlap required to
// attempt generation at all. Followups get a pass since their wording rarely
// repeats the topic.
const relevanceThreshold = 0.1

// Service generates and validates answers.
type Service struct {
	provider ChatProvider
	catalog  BookCatalog
}

// New creates a generation service.
func New(provider ChatProvider, catalog BookCatalog) *Service {
	return &Service{provider: provider, catalog: catalog}
}

// Answer produces a grounded answer for the payload. An empty payload or an
// off-topic context short-circuits to the no-information response. Answers
// that fail validation get one correction pass; if the rewrite still scores
// below the floor the unreliable-information response is returned instead.
func (s *Service) Answer(ctx context.Context, query string, pl payload.Payload) (string, error) {
	log := logger.FromContext(ctx)

	if pl.IsEmpty() {
		return NoInfoAnswer, nil
	}

	contextText := pl.ContextText()
	if pl.Intent() != domintent.Followup {
		if rel := contextRelevance(query, contextText); rel < relevanceThreshold {
			log.Info("context relevance below threshold", zap.Float64("relevance", rel))
			return NoInfoAnswer, nil
		}
	}

	focus := ""
	if books := pl.Books(); len(books) > 0 {
		focus = s.bookTitle(books[0])
	}

	messages := []Message{
		{Role: RoleSystem, Content: buildSystemPrompt(pl.Intent(), focus)},
		{Role: RoleUser, Content: s.buildUserPrompt(query, pl)},
	}

	answer, err := s.provider.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	validation := ValidateAnswer(answer, contextText, query)

	for attempt := 0; attempt < maxCorrectionAttempts && !validation.Valid; attempt++ {
		log.Warn("answer failed validation, retrying",
			zap.Float64("confidence", validation.Confidence),
			zap.Strings("issues", validation.Issues))

		messages = append(messages,
			Message{Role: RoleAssistant, Content: answer},
			Message{Role: RoleUser, Content: correctionPrompt(validation.Issues, contextText)},
		)
		answer, err = s.provider.Complete(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("generate correction: %w", err)
		}
		validation = ValidateAnswer(answer, contextText, query)
	}

	if !validation.Valid && validation.Confidence < fallbackConfidence {
		log.Warn("answer rejected after correction",
			zap.Float64("confidence", validation.Confidence))
		return UnreliableAnswer, nil
	}
	return answer, nil
}

// BookList renders the catalog for "what books do you have" style requests.
func (s *Service) BookList() string {
	var sb strings.Builder
	sb.WriteString("Here are the books available in my knowledge base:\n")
	for i, b := range s.catalog.All() {
		fmt.Fprintf(&sb, "\n%d. **%s** by %s (%s)", i+1, b.Title(), b.Author(), b.Publisher())
	}
	sb.WriteString("\n\nYou can ask me questions about any of these books.")
	return sb.String()
}

// contextRelevance measures how much of the query's vocabulary the context
// covers.
func contextRelevance(query, contextText string) float64 {
	queryWords := wordSet(strings.ToLower(query))
	if len(queryWords) == 0 {
		return 1.0
	}
	contextWords := wordSet(strings.ToLower(contextText))
	matched := 0
	for w := range queryWords {
		if _, ok := contextWords[w]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryWords))
}

func (s *Service) bookTitle(id string) string {
	for _, b := range s.catalog.All() {
		if b.ID() == id {
			return b.Title()
		}
	}
	return id
}
