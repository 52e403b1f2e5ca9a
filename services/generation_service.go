package services

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// GenerationService produces an answer from a fully assembled prompt.
// Failures surface immediately as UpstreamError: generation calls are costly,
// so there is no automatic retry.
type GenerationService interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelID() string
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a GenerationService backed by the Gemini API.
func NewGeminiGenerator(client *genai.Client, model string) GenerationService {
	return &geminiGenerator{client: client, model: model}
}

func (g *geminiGenerator) ModelID() string {
	return g.model
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	})
	if err != nil {
		return "", &UpstreamError{Service: "generation", Err: err}
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", &UpstreamError{Service: "generation", Err: errors.New("empty response from model")}
	}

	var answer strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			answer.WriteString(part.Text)
		}
	}
	return answer.String(), nil
}
