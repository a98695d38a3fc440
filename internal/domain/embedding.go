package domain

import (
	"context"
	"fmt"
)

// Embedder turns text into a vector. Implementations are deterministic for a
// given model and always return vectors of the model's fixed dimension.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is implemented by embedders that can probe their provider.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult is a vector plus the provider's token accounting.
// Cache hits report zero tokens.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Dimensions returns the vector length.
func (r EmbeddingResult) Dimensions() int { return len(r.Embedding) }

// CheckHealth probes e when it implements HealthChecker; other embedders are
// assumed healthy.
func CheckHealth(ctx context.Context, e Embedder) error {
	if hc, ok := e.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// InstructionEmbedder prefixes every text with a model instruction such as
// "query: " or "passage: ".
type InstructionEmbedder struct {
	inner       Embedder
	instruction string
}

// NewInstructionEmbedder creates a decorator that prepends instruction text.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// WithInstruction wraps inner in an InstructionEmbedder, or returns inner
// unchanged when instruction is empty.
func WithInstruction(inner Embedder, instruction string) Embedder {
	if instruction == "" {
		return inner
	}
	return NewInstructionEmbedder(inner, instruction)
}

// Embed embeds instruction+text.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, e.instruction+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return result, nil
}

// HealthCheck probes the inner embedder.
func (e *InstructionEmbedder) HealthCheck(ctx context.Context) error {
	return CheckHealth(ctx, e.inner)
}
