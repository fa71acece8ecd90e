package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxQueryLength is the maximum allowed query length. The cap bounds embedding
// and rerank cost.
const MaxQueryLength = 1000

// Query is an immutable user question, optionally pinned to one book.
type Query struct {
	text       string
	bookFilter string
}

// NewQuery validates and creates a Query. Control characters are stripped
// before validation so they never reach prompt assembly. bookFilter may be
// empty.
func NewQuery(text, bookFilter string) (Query, error) {
	text = strings.TrimSpace(stripControl(text))
	if text == "" {
		return Query{}, fmt.Errorf("query text is required")
	}
	if len(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	return Query{text: text, bookFilter: bookFilter}, nil
}

// Text returns the raw question text.
func (q Query) Text() string { return q.text }

// BookFilter returns the explicit book identifier, if the caller pinned one.
func (q Query) BookFilter() string { return q.bookFilter }

// HasBookFilter reports whether an explicit book filter is set.
func (q Query) HasBookFilter() bool { return q.bookFilter != "" }

func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}
