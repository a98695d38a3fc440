package embedding

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecrud/internal/domain"
)

const (
	// previewChars is how much of the input text is logged.
	previewChars = 50
	// previewValues is how many leading vector components are logged.
	previewValues = 5
)

// InstrumentedEmbedder wraps Embedder with logging.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with observability.
func NewInstrumentedEmbedder(inner domain.Embedder, provider, model string, logger *zap.Logger) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder and logs a preview of every embedding.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	start := time.Now()

	result, err := p.inner.Embed(ctx, text)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	p.logger.Debug("Embedding generated",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.String("text", preview(text)),
		zap.Float32s("head", head(result.Embedding)),
		zap.Int("dimensions", result.Dimensions()),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// HealthCheck probes the inner embedder.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	return domain.CheckHealth(ctx, p.inner)
}

// preview cuts text to previewChars runes.
func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewChars {
		return text
	}
	return string([]rune(text)[:previewChars])
}

func head(vec []float32) []float32 {
	if len(vec) <= previewValues {
		return vec
	}
	return vec[:previewValues]
}
