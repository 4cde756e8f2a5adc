package suggest

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/metas/internal/apperr"
)

func TestParseSteps(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"object", `{"passos":["a","b"]}`, []string{"a", "b"}},
		{"bare array", `["a","b","c"]`, []string{"a", "b", "c"}},
		{"fenced", "```json\n{\"passos\":[\"a\"]}\n```", []string{"a"}},
		{"plain fence", "```\n[\"a\"]\n```", []string{"a"}},
		{"trims and drops blanks", `{"passos":["  a ","", "   ","b"]}`, []string{"a", "b"}},
		{"missing key", `{"other":["x"]}`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSteps(tt.raw)
			if err != nil {
				t.Fatalf("ParseSteps: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseStepsRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json", "```json\n```", `{"passos":"a"}`} {
		if _, err := ParseSteps(raw); err == nil {
			t.Errorf("ParseSteps(%q) succeeded", raw)
		}
	}
}

func TestPromptMentionsGoal(t *testing.T) {
	p := Prompt("  Aprender Go ", "em 3 meses")
	if !strings.Contains(p, `"Aprender Go"`) || !strings.Contains(p, `"em 3 meses"`) {
		t.Errorf("prompt = %q", p)
	}
	if !strings.Contains(p, "3 a 5 passos") {
		t.Errorf("prompt does not bound step count: %q", p)
	}
}

func TestDisabledIsUnavailable(t *testing.T) {
	_, err := Disabled{}.Suggest(context.Background(), "t", "")
	if !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
