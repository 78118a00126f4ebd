// Package llm defines the capability every generative backend implements.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrMissingCredential is returned when the selected backend has no API key.
	ErrMissingCredential = errors.New("missing API key")
	// ErrEmptyCompletion is returned when a backend answered without text.
	ErrEmptyCompletion = errors.New("no text content in response")
)

// Usage is the token count reported by a backend.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Completion is a backend answer. Usage is nil when the backend did not
// report token counts.
type Completion struct {
	Text  string
	Usage *Usage
}

// Backend sends one prompt to a generative text service.
type Backend interface {
	// Name is the provider name used for pricing, e.g. "anthropic".
	Name() string
	// Model is the model ID sent with each request.
	Model() string
	Complete(ctx context.Context, prompt string) (Completion, error)
	Close()
}
