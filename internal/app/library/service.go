package library

import (
	"context"

	"github.com/ssechho/fanchatbot/internal/domain"
	"github.com/ssechho/fanchatbot/internal/observability"
)

// Service holds the read-only logic of the keyword library: words extracted
// from a user's conversations, each carrying deep links back to the
// conversations that mention it. There is no write path here.
type Service struct {
	index domain.KeywordIndex
}

// NewService creates a library service from a KeywordIndex
func NewService(index domain.KeywordIndex) *Service {
	return &Service{
		index: index,
	}
}

// ListForUser returns all extracted-word entries owned by the user. A lookup
// failure degrades to an empty list so the library page renders instead of
// blocking; zero entries is a normal result, not an error.
func (s *Service) ListForUser(ctx context.Context, owner domain.Username) []*domain.KeywordEntry {
	log := observability.LoggerFromContext(ctx).With("username", owner)

	if s.index == nil {
		return []*domain.KeywordEntry{}
	}

	entries, err := s.index.ListKeywordsByOwner(ctx, owner)
	if err != nil {
		log.Warn("failed to fetch keyword library, serving empty", "error", err)
		return []*domain.KeywordEntry{}
	}
	return entries
}
