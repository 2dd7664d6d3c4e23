package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"review_pipeline/internal/adapters/observability"
	"review_pipeline/internal/domain"
)

// Gemini labels reviews with a JSON-mode GenerateContent call.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int
}

func NewGemini(ctx context.Context, apiKey, model string, maxTokens int) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model, maxTokens: maxTokens}, nil
}

func (g *Gemini) Name() string { return "gemini:" + g.model }

func (g *Gemini) Classify(ctx context.Context, text string) (l domain.Label, err error) {
	start := time.Now()
	defer func() { observability.ObserveClassify("gemini", err, time.Since(start)) }()

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instructions, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
		ResponseMIMEType:  "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"label": {Type: genai.TypeInteger, Description: "0 neutral, 1 negative"},
			},
			Required: []string{"label"},
		},
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(Truncate(text, g.maxTokens)), cfg)
	if err != nil {
		return 0, fmt.Errorf("GenAI classify failed: %w", err)
	}
	return decodeLabel(result.Text())
}
