// Package scope defines the subset of book collections a query may search.
package scope

import (
	"fmt"
	"sort"
)

// Selector is the resolved search scope: one book, a list, or all books.
// A Selector always names at least one collection.
type Selector struct {
	books []string
}

// Single creates a scope covering exactly one book.
func Single(book string) (Selector, error) {
	if book == "" {
		return Selector{}, fmt.Errorf("book identifier is required")
	}
	return Selector{books: []string{book}}, nil
}

// Books creates a scope covering an explicit list of books.
// The list is copied and sorted so collection iteration order is deterministic
// regardless of fan-in completion order.
func Books(books []string) (Selector, error) {
	if len(books) == 0 {
		return Selector{}, fmt.Errorf("at least one book is required")
	}
	out := make([]string, 0, len(books))
	seen := make(map[string]bool, len(books))
	for _, b := range books {
		if b == "" {
			return Selector{}, fmt.Errorf("empty book identifier in scope")
		}
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	sort.Strings(out)
	return Selector{books: out}, nil
}

// Collections returns the book identifiers in deterministic (sorted) order.
func (s Selector) Collections() []string {
	out := make([]string, len(s.books))
	copy(out, s.books)
	return out
}

// Size returns the number of collections in scope.
func (s Selector) Size() int { return len(s.books) }

// IsSingle reports whether the scope covers exactly one book.
func (s Selector) IsSingle() bool { return len(s.books) == 1 }

// Book returns the single book in scope, or "" when the scope is wider.
func (s Selector) Book() string {
	if len(s.books) == 1 {
		return s.books[0]
	}
	return ""
}

// Contains reports whether the given book is in scope.
func (s Selector) Contains(book string) bool {
	for _, b := range s.books {
		if b == book {
			return true
		}
	}
	return false
}
