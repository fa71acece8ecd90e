// Package intent defines the closed set of query intents. Every pipeline stage
// that branches on intent switches exhaustively over these values, so adding a
// variant forces each consumer to be updated deliberately.
package intent

// Intent classifies what a query asks of the corpus.
type Intent string

const (
	// General is the default: search everything, no special handling.
	General Intent = "general"
	// SpecificBook targets one book named (directly or by signal) in the query.
	SpecificBook Intent = "specific_book"
	// Followup continues the previous turn's book without naming it.
	Followup Intent = "followup"
	// CrossBook asks for comparison or synthesis across all books.
	CrossBook Intent = "cross_book"
	// Structure asks about organization: chapters, table of contents, outline.
	Structure Intent = "structure"
)

// IsValid checks if the intent is one of the supported values.
func (i Intent) IsValid() bool {
	switch i {
	case General, SpecificBook, Followup, CrossBook, Structure:
		return true
	}
	return false
}

// SingleBook reports whether the intent pins retrieval to exactly one book.
func (i Intent) SingleBook() bool {
	return i == SpecificBook || i == Followup
}
