package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when a document does not exist.
var ErrNotFound = errors.New("not found")

// CompletionClient defines how the application talks to the completion
// backend. Complete takes the conversation history (never including the
// local greeting line) and returns exactly one assistant message. There is
// no streaming; a call either yields one message or fails.
type CompletionClient interface {
	Complete(ctx context.Context, mode PersonalityKey, history []Message) (Message, error)
}

// ConversationStore defines conversation persistence.
//
// Create assigns and returns the document id; UpdateMessages overwrites the
// stored message array wholesale (the client is the source of truth for the
// active conversation, so updates are full replacements rather than remote
// appends). ListByOwner returns documents in store order and an empty slice
// when the owner has none.
type ConversationStore interface {
	CreateConversation(ctx context.Context, conv *Conversation) (ConversationID, error)
	UpdateConversationMessages(ctx context.Context, id ConversationID, messages []Message) error
	ListConversationsByOwner(ctx context.Context, owner Username) ([]*Conversation, error)
}

// KeywordIndex is the read-only port for the library view. Zero matches is
// an empty slice, not an error.
type KeywordIndex interface {
	ListKeywordsByOwner(ctx context.Context, owner Username) ([]*KeywordEntry, error)
}
