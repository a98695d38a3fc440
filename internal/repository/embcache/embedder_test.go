package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecrud/internal/db"
	"github.com/kailas-cloud/vecrud/internal/domain"
	"github.com/kailas-cloud/vecrud/internal/repository/keyspace"
)

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{Model: "all-MiniLM-L6-v2"})
	ctx := context.Background()

	var setKey string
	ms.setFn = func(_ context.Context, key string, _ []byte) error {
		setKey = key
		return nil
	}

	result, err := ce.Embed(ctx, "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
	if result.TotalTokens != 10 {
		t.Fatalf("expected TotalTokens=10, got %d", result.TotalTokens)
	}
	if !strings.HasPrefix(setKey, "vecrud:emb:") {
		t.Fatalf("expected SET under the cache prefix, got %q", setKey)
	}
}

func TestEmbed_CacheHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2, 0.3},
	}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ctx := context.Background()

	cached := encodeVector([]float32{0.4, 0.5, 0.6})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	result, err := ce.Embed(ctx, "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.4 {
		t.Fatalf("expected cached vector, got: %v", result.Embedding)
	}
	if result.TotalTokens != 0 {
		t.Fatalf("expected TotalTokens=0 on cache hit, got %d", result.TotalTokens)
	}
	if inner.calls != 0 {
		t.Fatalf("inner embedder must not be called on hit, got %d calls", inner.calls)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	ce, _ := newTestCachedEmbedder(t, inner, Options{})

	_, err := ce.Embed(context.Background(), "test text")
	if err == nil {
		t.Fatal("expected error from inner embedder")
	}
}

func TestEmbed_CorruptEntryFallsThrough(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return []byte{1, 2, 3}, nil }

	result, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || result.Embedding[0] != 1 {
		t.Fatalf("expected inner call, got %d calls, %v", inner.calls, result.Embedding)
	}
}

func TestEmbed_WrongDimensionIsMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 0}}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{Dimensions: 2})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return encodeVector([]float32{1, 2, 3}), nil
	}

	result, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || len(result.Embedding) != 2 {
		t.Fatalf("expected provider call, got %d calls, %v", inner.calls, result.Embedding)
	}
}

func TestEmbed_StoreErrorsAreNotFatal(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("timeout")}
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte) error { return errors.New("readonly") }

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("cache failures must not fail Embed: %v", err)
	}
}

func TestEmbed_TTL(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{TTL: time.Hour})

	var gotTTL time.Duration
	ms.setWithTTLFn = func(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
		gotTTL = ttl
		return nil
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		t.Error("Set must not be used when TTL is configured")
		return nil
	}

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != time.Hour {
		t.Errorf("ttl = %v, want 1h", gotTTL)
	}
}

func TestCacheKey_ModelNamespacing(t *testing.T) {
	a := New(&mockEmbedder{}, &mockKVStore{}, keyspace.New("p:"), Options{Model: "a"}, nil, zap.NewNop())
	b := New(&mockEmbedder{}, &mockKVStore{}, keyspace.New("p:"), Options{Model: "b"}, nil, zap.NewNop())
	if a.key("same") == b.key("same") {
		t.Error("different models must not share cache keys")
	}
	if a.key("x") != a.key("x") {
		t.Error("cache key must be stable")
	}
}

func TestEmbed_Deterministic_WithMemoryStore(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.25, 0.5}}}
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	ce := New(inner, NewMemoryStore(), keyspace.New("vecrud:"), Options{}, counter, zap.NewNop())
	ctx := context.Background()

	first, err := ce.Embed(ctx, "¿Qué es ChromaDB?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inner.result = domain.EmbeddingResult{Embedding: []float32{9, 9}}
	second, err := ce.Embed(ctx, "¿Qué es ChromaDB?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Embedding[0] != second.Embedding[0] || first.Embedding[1] != second.Embedding[1] {
		t.Errorf("expected identical vectors, got %v and %v", first.Embedding, second.Embedding)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
}

func TestHealthCheck_Delegates(t *testing.T) {
	healthErr := errors.New("down")
	ce, _ := newTestCachedEmbedder(t, &mockEmbedder{healthErr: healthErr}, Options{})
	if err := ce.HealthCheck(context.Background()); !errors.Is(err, healthErr) {
		t.Errorf("expected inner health error, got %v", err)
	}
}
