package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Service turns a system prompt and a user prompt into free text that is expected to hold JSON.
type Service interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// Complete calls f.
func (f ServiceFunc) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}

// ErrEmptyCompletion is returned when the completion holds no JSON text.
var ErrEmptyCompletion = errors.New("empty completion")

// StripFences removes a surrounding markdown code fence, with or without a language tag.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(strings.TrimSpace(s), "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeJSON strips fences from raw and unmarshals the rest into v.
func DecodeJSON(raw string, v any) error {
	text := StripFences(raw)
	if text == "" {
		return ErrEmptyCompletion
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("failed to decode completion: %w", err)
	}
	return nil
}
