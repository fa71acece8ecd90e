package generate

import (
	"context"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain/book"
)

// Role identifies a chat message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat completion request.
type Message struct {
	Role    Role
	Content string
}

// ChatProvider produces a completion for a conversation.
type ChatProvider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// BookCatalog lists the books the generator may cite.
type BookCatalog interface {
	All() []book.Book
}
