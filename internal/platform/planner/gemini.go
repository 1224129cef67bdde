// Package planner provides the Gemini-backed repair planner. It implements
// repair.Planner; the rest of the system never sees the genai types.
package planner

import (
	"context"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "models/gemini-1.5-pro"

// GeminiPlanner asks a Gemini model for schedule repair proposals.
type GeminiPlanner struct {
	client *genai.Client
	model  string
}

// NewGeminiPlanner connects to the Gemini API. model may be empty to use
// the default.
func NewGeminiPlanner(ctx context.Context, apiKey, model string) (*GeminiPlanner, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &GeminiPlanner{client: client, model: model}, nil
}

// Complete sends the prompts and returns the concatenated text reply.
func (g *GeminiPlanner) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m := g.client.GenerativeModel(g.model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	m.ResponseMIMEType = "application/json"

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying API client.
func (g *GeminiPlanner) Close() error { return g.client.Close() }
