package completion

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/ssechho/fanchatbot/internal/domain"
)

// VertexClient implements domain.CompletionClient on Vertex AI (Gemini).
// Each personality maps to its own model, replacing the per-personality API
// routes the original front-end dispatched to.
type VertexClient struct {
	client *genai.Client
	models map[domain.PersonalityKey]string
}

// NewVertexClient creates the client. models picks the model name per
// personality; a missing key falls back to the funny model.
func NewVertexClient(ctx context.Context, projectID, location string, models map[domain.PersonalityKey]string) (*VertexClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("projectID and location are required for the Vertex client")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{
		client: client,
		models: models,
	}, nil
}

func (v *VertexClient) modelFor(mode domain.PersonalityKey) string {
	if m, ok := v.models[mode]; ok && m != "" {
		return m
	}
	if m, ok := v.models[domain.PersonalityFunny]; ok && m != "" {
		return m
	}
	return "gemini-2.5-flash"
}

// Complete implements domain.CompletionClient using Vertex AI.
func (v *VertexClient) Complete(
	ctx context.Context,
	mode domain.PersonalityKey,
	history []domain.Message,
) (domain.Message, error) {
	// 1) Persona system prompt
	system := systemPrompt(mode)

	// 2) History (user / assistant) as conversation
	var contents []*genai.Content
	for _, m := range history {
		var role genai.Role
		switch m.Role {
		case domain.RoleAssistant:
			role = genai.RoleModel
		default:
			role = genai.RoleUser
		}

		contents = append(contents, genai.NewContentFromText(m.Text(), role))
	}

	// 3) Model config (without genai.Ptr to avoid generic issues)
	temp := float32(0.8)
	topP := float32(0.9)

	outputTokens := int32(2048)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}

	// 4) Call to Vertex
	res, err := v.client.Models.GenerateContent(ctx, v.modelFor(mode), contents, cfg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("vertex generate content: %w", err)
	}

	// 5) Extract only the text
	text := res.Text()
	if text == "" {
		return domain.Message{}, fmt.Errorf("vertex returned empty text")
	}

	return domain.NewMessage(domain.RoleAssistant, text), nil
}
