package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// GenAIModel calls Gemini through the Google GenAI SDK.
type GenAIModel struct {
	client *genai.Client
}

// NewGenAIModel creates a Gemini client for the given API key.
func NewGenAIModel(ctx context.Context, apiKey string) (*GenAIModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIModel{client: client}, nil
}

// Generate sends a single-turn request with an optional inline image.
func (m *GenAIModel) Generate(ctx context.Context, model string, req Request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	var cfg *genai.GenerateContentConfig
	if req.JSON {
		cfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	resp, err := m.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	if text := resp.Text(); text != "" {
		return text, nil
	}
	// Some models answer structured requests with a function call; its
	// arguments are the payload the caller wanted.
	if calls := resp.FunctionCalls(); len(calls) > 0 && calls[0].Args != nil {
		data, err := json.Marshal(calls[0].Args)
		if err != nil {
			return "", fmt.Errorf("encode function call args: %w", err)
		}
		return string(data), nil
	}
	return "", ErrEmptyResponse
}
