// Package app is the composition root: it turns a config into a wired vector
// store, embedder chain and the record and health services.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecrud/internal/config"
	dbRedis "github.com/kailas-cloud/vecrud/internal/db/redis"
	"github.com/kailas-cloud/vecrud/internal/domain"
	domcol "github.com/kailas-cloud/vecrud/internal/domain/collection"
	"github.com/kailas-cloud/vecrud/internal/logger"
	"github.com/kailas-cloud/vecrud/internal/metrics"
	collectionrepo "github.com/kailas-cloud/vecrud/internal/repository/collection"
	"github.com/kailas-cloud/vecrud/internal/repository/embcache"
	"github.com/kailas-cloud/vecrud/internal/repository/embedded"
	"github.com/kailas-cloud/vecrud/internal/repository/keyspace"
	qdrantrepo "github.com/kailas-cloud/vecrud/internal/repository/qdrant"
	recordrepo "github.com/kailas-cloud/vecrud/internal/repository/record"
	openaiEmb "github.com/kailas-cloud/vecrud/internal/transport/openai"
	collectionuc "github.com/kailas-cloud/vecrud/internal/usecase/collection"
	embeddinguc "github.com/kailas-cloud/vecrud/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/vecrud/internal/usecase/health"
	recorduc "github.com/kailas-cloud/vecrud/internal/usecase/record"
)

// App holds the services bound to one open collection.
type App struct {
	Records    *recorduc.Service
	Health     *healthuc.Service
	Collection domcol.Collection
	// Created reports whether Open created the collection.
	Created bool

	closers []func()
}

// backend is one vector store driver with its repositories.
type backend struct {
	pinger      healthuc.StorePinger
	collections collectionuc.Repository
	records     recorduc.Repository
	cache       embeddingStore
	close       func()
}

// embeddingStore is the key-value store behind the embedding cache.
type embeddingStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Open connects the configured store, opens (or creates) the collection and
// builds the services. Close releases the store.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	ctx = logger.ContextWithLogger(ctx, log)

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a := &App{closers: []func(){be.close}}

	metrics.RegisterEmbeddingMetrics()

	keys := keyspace.New(cfg.Storage.KeyPrefix)
	docEmbedder := buildEmbedder(cfg.Embedding, cfg.Embedding.DocumentInstruction, be.cache, keys, log)
	queryEmbedder := buildEmbedder(cfg.Embedding, cfg.Embedding.QueryInstruction, be.cache, keys, log)
	log.Debug("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.Embedding.CacheEnabled()),
	)

	collSvc := collectionuc.New(be.collections, cfg.Embedding.Dimensions)
	col, created, err := collSvc.Open(ctx, cfg.Collection.Name)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open collection %s: %w", cfg.Collection.Name, err)
	}

	a.Collection = col
	a.Created = created
	a.Records = recorduc.New(be.records, col, docEmbedder, queryEmbedder).
		WithLimits(cfg.Query.DefaultTopK, cfg.Query.MaxTopK)
	a.Health = healthuc.New(be.pinger, newEmbeddingHealthChecker(queryEmbedder))
	return a, nil
}

// Close releases every resource opened by Open, last first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func openBackend(ctx context.Context, cfg config.Config, log *zap.Logger) (backend, error) {
	dbCfg := cfg.Database
	log.Info("Opening vector store",
		zap.String("driver", dbCfg.Driver),
		zap.Strings("addrs", dbCfg.Addrs),
	)

	switch dbCfg.Driver {
	case config.DriverMemory:
		s, err := embedded.Open(embedded.Config{
			PersistDir: dbCfg.Memory.PersistDir,
			Compress:   dbCfg.Memory.Compress,
		}, cfg.Embedding.Dimensions)
		if err != nil {
			return backend{}, fmt.Errorf("open embedded store: %w", err)
		}
		return backend{
			pinger:      s,
			collections: s.Collections(),
			records:     s.Records(),
			cache:       embcache.NewMemoryStore(),
			close:       func() {},
		}, nil

	case config.DriverValkey, config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    dbCfg.Addrs,
			Username: dbCfg.Username,
			Password: dbCfg.Password,
		})
		if err != nil {
			return backend{}, fmt.Errorf("create %s store: %w", dbCfg.Driver, err)
		}
		timeout := time.Duration(dbCfg.ReadinessTimeout) * time.Second
		if err := s.WaitForReady(ctx, timeout); err != nil {
			s.Close()
			return backend{}, fmt.Errorf("%s not ready: %w", dbCfg.Driver, err)
		}
		keys := keyspace.New(cfg.Storage.KeyPrefix)
		return backend{
			pinger: s,
			collections: collectionrepo.New(s, keys).WithHNSW(collectionrepo.HNSWConfig{
				M:           cfg.Collection.HNSWM,
				EFConstruct: cfg.Collection.HNSWEFConstruct,
			}),
			records: recordrepo.New(s, keys),
			cache:   s,
			close:   s.Close,
		}, nil

	case config.DriverQdrant:
		s, err := qdrantrepo.Open(qdrantrepo.Config{
			Host:   dbCfg.Qdrant.Host,
			Port:   dbCfg.Qdrant.Port,
			APIKey: dbCfg.Qdrant.APIKey,
			UseTLS: dbCfg.Qdrant.UseTLS,
		})
		if err != nil {
			return backend{}, fmt.Errorf("open qdrant store: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, time.Duration(dbCfg.ReadinessTimeout)*time.Second)
		defer cancel()
		if err := s.Ping(pingCtx); err != nil {
			_ = s.Close()
			return backend{}, fmt.Errorf("qdrant not ready: %w", err)
		}
		return backend{
			pinger:      s,
			collections: s.Collections(),
			records:     s.Records(),
			cache:       embcache.NewMemoryStore(),
			close: func() {
				if err := s.Close(); err != nil {
					log.Warn("Failed to close qdrant client", zap.Error(err))
				}
			},
		}, nil

	default:
		return backend{}, fmt.Errorf("unknown database driver %q", dbCfg.Driver)
	}
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
func buildEmbedder(
	cfg config.EmbeddingConfig,
	instruction string,
	cache embeddingStore,
	keys keyspace.Keyspace,
	log *zap.Logger,
) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:            cfg.APIKey,
		BaseURL:           cfg.BaseURL,
		Model:             cfg.Model,
		Dimensions:        cfg.RequestDimensions,
		Provider:          cfg.Provider,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            log,
	})

	var embedder domain.Embedder = base
	if cfg.CacheEnabled() && cache != nil {
		embedder = embcache.New(base, cache, keys, embcache.Options{
			Model:      cfg.Model,
			TTL:        time.Duration(cfg.CacheTTLSec) * time.Second,
			Dimensions: cfg.Dimensions,
		}, metrics.EmbeddingCacheTotal, log)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, log)

	// Outermost so cache keys include the instruction.
	return domain.WithInstruction(embedder, instruction)
}

// embeddingHealthChecker adapts domain.Embedder to health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if err := domain.CheckHealth(ctx, h.embedder); err != nil {
		return fmt.Errorf("embedding health check: %w", err)
	}
	return nil
}
