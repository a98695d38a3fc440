package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/vecrud/internal/domain"
)

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	healthErr error
	texts     []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error {
	return m.healthErr
}

// plainMockEmbedder has no HealthCheck method.
type plainMockEmbedder struct{}

func (plainMockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{1}}, nil
}

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2, 0.3},
	}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(result.Embedding))
	}
	if len(inner.texts) != 1 || inner.texts[0] != "hello" {
		t.Errorf("expected text to be forwarded, got %v", inner.texts)
	}
}

func TestInstrumentedEmbedder_WithUsage(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2},
		PromptTokens: 100,
		TotalTokens:  100,
	}}
	p := NewInstrumentedEmbedder(inner, "test-usage", "test-model-u", zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalTokens != 100 {
		t.Errorf("expected 100 total tokens, got %d", result.TotalTokens)
	}
}

func TestInstrumentedEmbedder_Error(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestInstrumentedEmbedder_LogsPreview(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{1, 2, 3, 4, 5, 6, 7},
	}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.New(core))

	text := strings.Repeat("a", 80)
	if _, err := p.Embed(context.Background(), text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.FilterMessage("Embedding generated").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 debug entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if got := fields["text"]; got != strings.Repeat("a", 50) {
		t.Errorf("expected 50-char preview, got %v", got)
	}
	if got := fields["dimensions"]; got != int64(7) {
		t.Errorf("expected dimensions 7, got %v", got)
	}
	head, ok := fields["head"].([]any)
	if !ok || len(head) != 5 {
		t.Errorf("expected 5 leading values, got %v", fields["head"])
	}
}

func TestPreview_Runes(t *testing.T) {
	text := strings.Repeat("ñ", 60)
	got := preview(text)
	if len([]rune(got)) != 50 {
		t.Errorf("expected 50 runes, got %d", len([]rune(got)))
	}
	if preview("short") != "short" {
		t.Error("short text must be kept")
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	inner := &mockEmbedder{healthErr: errors.New("down")}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())
	if err := p.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected delegated health error")
	}

	plain := NewInstrumentedEmbedder(plainMockEmbedder{}, "test", "test-model", zap.NewNop())
	if err := plain.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected nil for embedder without health check, got %v", err)
	}
}
