package llm

import (
	"context"

	"google.golang.org/genai"
)

// Provider is the part of *genai.Models the prompt generator needs.
type Provider interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ Provider = (*genai.Models)(nil)
