package memory

import (
	"context"
	"sync"

	"github.com/ssechho/fanchatbot/internal/domain"
)

// KeywordIndex is an in-memory domain.KeywordIndex. The read path is all
// this system uses; Put exists so local mode and tests can seed entries.
type KeywordIndex struct {
	mu      sync.RWMutex
	entries []*domain.KeywordEntry
}

func NewKeywordIndex() *KeywordIndex {
	return &KeywordIndex{}
}

func (s *KeywordIndex) Put(entry *domain.KeywordEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
}

func (s *KeywordIndex) ListKeywordsByOwner(ctx context.Context, owner domain.Username) ([]*domain.KeywordEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.KeywordEntry{}
	for _, e := range s.entries {
		if e.Owner != owner {
			continue
		}
		ids := make([]domain.ConversationID, len(e.ConversationIDs))
		copy(ids, e.ConversationIDs)
		out = append(out, &domain.KeywordEntry{
			ID:              e.ID,
			Word:            e.Word,
			Owner:           e.Owner,
			ConversationIDs: ids,
		})
	}
	return out, nil
}
