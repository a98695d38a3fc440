package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecrud/internal/db"
	"github.com/kailas-cloud/vecrud/internal/domain"
	"github.com/kailas-cloud/vecrud/internal/repository/keyspace"
)

// store is the slice of db.KVStore the cache needs. MemoryStore and the
// Redis store both satisfy it.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options tune cache keys and expiry.
type Options struct {
	// Model namespaces keys so vectors of different models never mix.
	Model string
	// TTL of cached vectors; zero keeps them forever.
	TTL time.Duration
	// Dimensions, when set, turns cached vectors of any other length into misses.
	Dimensions int
}

// CachedEmbedder memoizes an Embedder by text, so repeated texts return
// bit-identical vectors without a provider call.
type CachedEmbedder struct {
	inner   domain.Embedder
	store   store
	keys    keyspace.Keyspace
	opts    Options
	results *prometheus.CounterVec
	logger  *zap.Logger
}

// New wraps inner. results counts lookups by label "result" (hit or miss)
// and may be nil.
func New(
	inner domain.Embedder,
	s store,
	keys keyspace.Keyspace,
	opts Options,
	results *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:   inner,
		store:   s,
		keys:    keys,
		opts:    opts,
		results: results,
		logger:  logger,
	}
}

// Embed serves the vector from the cache when possible. A hit reports zero
// tokens since the provider was not called. Cache failures only degrade to
// a provider call, never to an error.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.key(text)

	if vec, ok := c.lookup(ctx, key); ok {
		c.count("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.count("miss")

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	c.save(ctx, key, result.Embedding)
	return result, nil
}

// HealthCheck probes the inner embedder; the cache itself is never checked.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	return domain.CheckHealth(ctx, c.inner)
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(c.opts.Model + "\x00" + text))
	return c.keys.Embedding(hex.EncodeToString(sum[:]))
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	raw, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil, false
	case err != nil:
		c.logger.Warn("Embedding cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	vec, err := decodeVector(raw, c.opts.Dimensions)
	if err != nil {
		c.logger.Warn("Discarding cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) save(ctx context.Context, key string, vec []float32) {
	raw := encodeVector(vec)
	write := c.store.Set
	if c.opts.TTL > 0 {
		write = func(ctx context.Context, key string, value []byte) error {
			return c.store.SetWithTTL(ctx, key, value, c.opts.TTL)
		}
	}
	if err := write(ctx, key, raw); err != nil {
		c.logger.Warn("Embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedEmbedder) count(result string) {
	if c.results != nil {
		c.results.WithLabelValues(result).Inc()
	}
}
