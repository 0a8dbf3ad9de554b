package completion

import (
	"context"
	"fmt"

	"github.com/ssechho/fanchatbot/internal/domain"
)

// MockClient is a canned domain.CompletionClient for local mode and tests.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Complete(ctx context.Context, mode domain.PersonalityKey, history []domain.Message) (domain.Message, error) {
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Text()
	}
	return domain.NewMessage(
		domain.RoleAssistant,
		fmt.Sprintf("(%s) 그렇구나! %q 라고 했지? 더 얘기해줘!", mode, last),
	), nil
}
