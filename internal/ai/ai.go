// Package ai holds the contract between the evaluator and the hosted
// completion providers.
package ai

import "context"

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Options bound a single completion request.
type Options struct {
	Temperature     float32
	MaxOutputTokens int
}

// Generator sends a prompt to a hosted model and returns its text answer.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, opts Options) (string, error)
	Model() string
}
