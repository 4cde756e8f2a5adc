package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// DefaultModel is used when the config leaves the model blank.
const DefaultModel = "gemini-2.5-flash"

// Gemini suggests steps through the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini provider. A zero timeout means the caller's
// context alone bounds each request.
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("suggest: create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

var stepsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"passos": {
			Type:        genai.TypeArray,
			Description: "Uma lista de passos para alcançar a meta.",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"passos"},
}

func (g *Gemini) Suggest(ctx context.Context, title, description string) ([]string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(Prompt(title, description)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   stepsSchema,
		})
	if err != nil {
		return nil, fmt.Errorf("suggest: generate: %w", err)
	}

	raw := result.Text()
	slog.Debug("gemini response", slog.String("model", g.model), slog.Int("bytes", len(raw)))
	return ParseSteps(raw)
}
