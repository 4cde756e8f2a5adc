// Package suggest asks a language model for practical steps toward a goal.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/metas/internal/apperr"
)

// Provider returns suggested checklist steps for a goal.
type Provider interface {
	Suggest(ctx context.Context, title, description string) ([]string, error)
}

// Disabled is the Provider used when no API key is configured.
type Disabled struct{}

func (Disabled) Suggest(context.Context, string, string) ([]string, error) {
	return nil, fmt.Errorf("suggest: no AI provider configured: %w", apperr.ErrUnavailable)
}

// Prompt builds the request text for a goal.
func Prompt(title, description string) string {
	return fmt.Sprintf(
		"Para a meta %q com a descrição %q, sugira 3 a 5 passos curtos e práticos para alcançá-la. "+
			"Responda apenas com JSON no formato {\"passos\": [\"...\"]}.",
		strings.TrimSpace(title), strings.TrimSpace(description),
	)
}

type stepsPayload struct {
	Steps []string `json:"passos"`
}

// ParseSteps decodes a model response. It accepts {"passos": [...]} or a
// bare JSON array, optionally wrapped in a Markdown code fence. Steps are
// trimmed and blank ones dropped.
func ParseSteps(raw string) ([]string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return nil, errors.New("suggest: empty model response")
	}

	var steps []string
	if strings.HasPrefix(clean, "[") {
		if err := json.Unmarshal([]byte(clean), &steps); err != nil {
			return nil, fmt.Errorf("suggest: decode steps: %w", err)
		}
	} else {
		var p stepsPayload
		if err := json.Unmarshal([]byte(clean), &p); err != nil {
			return nil, fmt.Errorf("suggest: decode steps: %w", err)
		}
		steps = p.Steps
	}

	out := make([]string, 0, len(steps))
	for _, s := range steps {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
