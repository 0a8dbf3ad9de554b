package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ssechho/fanchatbot/internal/domain"
)

// ConversationStore is an in-memory domain.ConversationStore for local mode
// and tests. Listing preserves insertion order because the roster order a
// user sees comes straight from it.
type ConversationStore struct {
	mu    sync.RWMutex
	docs  map[domain.ConversationID]*domain.Conversation
	order []domain.ConversationID
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		docs: make(map[domain.ConversationID]*domain.Conversation),
	}
}

func (s *ConversationStore) CreateConversation(ctx context.Context, conv *domain.Conversation) (domain.ConversationID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := domain.ConversationID(uuid.NewString())
	stored := &domain.Conversation{
		ID:       id,
		Title:    conv.Title,
		Mode:     conv.Mode,
		Owner:    conv.Owner,
		Messages: copyMessages(conv.Messages),
	}
	s.docs[id] = stored
	s.order = append(s.order, id)
	return id, nil
}

func (s *ConversationStore) UpdateConversationMessages(ctx context.Context, id domain.ConversationID, messages []domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Messages = copyMessages(messages)
	return nil
}

func (s *ConversationStore) ListConversationsByOwner(ctx context.Context, owner domain.Username) ([]*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Conversation{}
	for _, id := range s.order {
		doc := s.docs[id]
		if doc.Owner != owner {
			continue
		}
		out = append(out, &domain.Conversation{
			ID:       doc.ID,
			Title:    doc.Title,
			Mode:     doc.Mode,
			Owner:    doc.Owner,
			Messages: copyMessages(doc.Messages),
		})
	}
	return out, nil
}

// GetConversation reads one document back; handy in tests to check what a
// sync actually persisted.
func (s *ConversationStore) GetConversation(id domain.ConversationID) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Conversation{
		ID:       doc.ID,
		Title:    doc.Title,
		Mode:     doc.Mode,
		Owner:    doc.Owner,
		Messages: copyMessages(doc.Messages),
	}, nil
}

func copyMessages(msgs []domain.Message) []domain.Message {
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out
}
