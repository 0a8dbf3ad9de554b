package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ssechho/fanchatbot/internal/domain"
)

// Store implements domain.ConversationStore and domain.KeywordIndex on
// Firestore. One document per conversation, messages inline as an array;
// updates overwrite the whole array, matching the client-is-source-of-truth
// write path.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (FANCHAT_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) conversationsCol() *firestore.CollectionRef {
	return s.client.Collection("conversations")
}

func (s *Store) conversationDoc(id domain.ConversationID) *firestore.DocumentRef {
	return s.conversationsCol().Doc(string(id))
}

func (s *Store) extractedWordsCol() *firestore.CollectionRef {
	return s.client.Collection("extractedWords")
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type partDoc struct {
	Text string `firestore:"text"`
}

type messageDoc struct {
	Role  string    `firestore:"role"`
	Parts []partDoc `firestore:"parts"`
}

type conversationDoc struct {
	Title    string       `firestore:"title"`
	Mode     string       `firestore:"mode"`
	Username string       `firestore:"username"`
	Messages []messageDoc `firestore:"messages"`
}

type extractedWordDoc struct {
	Word           string   `firestore:"word"`
	Username       string   `firestore:"username"`
	ConversationID []string `firestore:"conversationId"`
}

func toMessageDocs(msgs []domain.Message) []messageDoc {
	out := make([]messageDoc, 0, len(msgs))
	for _, m := range msgs {
		parts := make([]partDoc, 0, len(m.Parts))
		for _, p := range m.Parts {
			parts = append(parts, partDoc{Text: p.Text})
		}
		out = append(out, messageDoc{Role: string(m.Role), Parts: parts})
	}
	return out
}

func fromMessageDocs(docs []messageDoc) []domain.Message {
	out := make([]domain.Message, 0, len(docs))
	for _, d := range docs {
		parts := make([]domain.Part, 0, len(d.Parts))
		for _, p := range d.Parts {
			parts = append(parts, domain.Part{Text: p.Text})
		}
		out = append(out, domain.Message{Role: domain.Role(d.Role), Parts: parts})
	}
	return out
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateConversation(ctx context.Context, conv *domain.Conversation) (domain.ConversationID, error) {
	doc := conversationDoc{
		Title:    conv.Title,
		Mode:     string(conv.Mode),
		Username: string(conv.Owner),
		Messages: toMessageDocs(conv.Messages),
	}

	ref, _, err := s.conversationsCol().Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("firestore CreateConversation: %w", err)
	}
	return domain.ConversationID(ref.ID), nil
}

func (s *Store) UpdateConversationMessages(ctx context.Context, id domain.ConversationID, messages []domain.Message) error {
	_, err := s.conversationDoc(id).Update(ctx, []firestore.Update{
		{Path: "messages", Value: toMessageDocs(messages)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrNotFound
		}
		return fmt.Errorf("firestore UpdateConversationMessages: %w", err)
	}
	return nil
}

func (s *Store) ListConversationsByOwner(ctx context.Context, owner domain.Username) ([]*domain.Conversation, error) {
	q := s.conversationsCol().Where("username", "==", string(owner))

	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []*domain.Conversation{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListConversationsByOwner: %w", err)
		}

		var doc conversationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode conversationDoc: %w", err)
		}

		out = append(out, &domain.Conversation{
			ID:       domain.ConversationID(snap.Ref.ID),
			Title:    doc.Title,
			Mode:     domain.PersonalityKey(doc.Mode),
			Owner:    domain.Username(doc.Username),
			Messages: fromMessageDocs(doc.Messages),
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// KeywordIndex implementation
// ─────────────────────────────────────────

func (s *Store) ListKeywordsByOwner(ctx context.Context, owner domain.Username) ([]*domain.KeywordEntry, error) {
	q := s.extractedWordsCol().Where("username", "==", string(owner))

	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []*domain.KeywordEntry{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListKeywordsByOwner: %w", err)
		}

		var doc extractedWordDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode extractedWordDoc: %w", err)
		}

		ids := make([]domain.ConversationID, 0, len(doc.ConversationID))
		for _, id := range doc.ConversationID {
			ids = append(ids, domain.ConversationID(id))
		}

		out = append(out, &domain.KeywordEntry{
			ID:              snap.Ref.ID,
			Word:            doc.Word,
			Owner:           domain.Username(doc.Username),
			ConversationIDs: ids,
		})
	}
	return out, nil
}
