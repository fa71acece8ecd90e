// Package book holds the metadata of ingested books. Each book owns one
// vector collection; the collection name is the book identifier.
package book

import (
	"fmt"
	"regexp"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Book is an immutable value describing one ingested book.
type Book struct {
	id        string
	title     string
	author    string
	publisher string
	signals   []*regexp.Regexp
}

// New validates and creates a Book.
// ID: ^[a-zA-Z0-9_-]+$, 1-64 chars. Signals are case-insensitive patterns that
// identify the book in free-form query text (title fragments, author names).
func New(id, title, author, publisher string, signals []string) (Book, error) {
	if id == "" {
		return Book{}, fmt.Errorf("book id is required")
	}
	if len(id) > 64 {
		return Book{}, fmt.Errorf("book id too long (max 64)")
	}
	if !idRegex.MatchString(id) {
		return Book{}, fmt.Errorf("book id must be alphanumeric with underscores and hyphens")
	}
	if title == "" {
		return Book{}, fmt.Errorf("book title is required")
	}

	compiled := make([]*regexp.Regexp, 0, len(signals))
	for _, s := range signals {
		re, err := regexp.Compile("(?i)" + s)
		if err != nil {
			return Book{}, fmt.Errorf("invalid signal pattern %q: %w", s, err)
		}
		compiled = append(compiled, re)
	}

	return Book{
		id:        id,
		title:     title,
		author:    author,
		publisher: publisher,
		signals:   compiled,
	}, nil
}

// ID returns the book identifier (also the collection name).
func (b Book) ID() string { return b.id }

// Title returns the book title.
func (b Book) Title() string { return b.title }

// Author returns the book author, "" when unknown.
func (b Book) Author() string { return b.author }

// Publisher returns the book publisher, "" when unknown.
func (b Book) Publisher() string { return b.publisher }

// MatchesQuery reports whether any of the book's signal patterns occur in the text.
func (b Book) MatchesQuery(text string) bool {
	for _, re := range b.signals {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
