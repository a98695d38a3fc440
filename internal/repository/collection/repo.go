package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/vecrud/internal/db"
	"github.com/kailas-cloud/vecrud/internal/domain"
	domcol "github.com/kailas-cloud/vecrud/internal/domain/collection"
	"github.com/kailas-cloud/vecrud/internal/repository/keyspace"
)

// store is the consumer interface for collections (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, idx *db.VectorIndex) error
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements usecase/collection.Repository on Redis/Valkey hashes plus an FT index.
type Repo struct {
	store store
	keys  keyspace.Keyspace
	hnsw  HNSWConfig
}

// New creates a collection repository.
func New(s store, keys keyspace.Keyspace) *Repo {
	return &Repo{store: s, keys: keys, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Create stores a collection: HSET metadata then FT.CREATE index.
// On FT.CREATE failure, rolls back the HSET via DEL. An index left over
// from an earlier run is adopted as is.
func (r *Repo) Create(ctx context.Context, col domcol.Collection) error {
	name := col.Name()

	metaKey := r.keys.CollectionMeta(name)
	exists, err := r.store.Exists(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	idx := r.recordIndex(name, col.VectorDim())
	if err := idx.Validate(); err != nil {
		return fmt.Errorf("record index: %w", err)
	}

	if err := r.store.HSet(ctx, metaKey, collectionToHash(col)); err != nil {
		return fmt.Errorf("hset collection %s: %w", name, err)
	}

	if err := r.store.CreateIndex(ctx, idx); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		cleanupErr := r.store.Del(ctx, metaKey)
		return errors.Join(fmt.Errorf("create index %s: %w", idx.Name, err), cleanupErr)
	}

	return nil
}

// Get retrieves a collection by name.
func (r *Repo) Get(ctx context.Context, name string) (domcol.Collection, error) {
	m, err := r.store.HGetAll(ctx, r.keys.CollectionMeta(name))
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(m) == 0 {
		return domcol.Collection{}, domain.ErrNotFound
	}

	return collectionFromHash(m)
}

// recordIndex defines the collection's record index: hashed metadata tokens
// in a TAG field plus the HNSW/COSINE vector field.
func (r *Repo) recordIndex(name string, vectorDim int) *db.VectorIndex {
	return &db.VectorIndex{
		Name:         r.keys.Index(name),
		Prefix:       r.keys.RecordPrefix(name),
		TagField:     keyspace.FieldFilter,
		TagSeparator: keyspace.FilterSeparator,
		VectorField:  keyspace.FieldVector,
		Dim:          vectorDim,
		M:            r.hnsw.M,
		EFConstruct:  r.hnsw.EFConstruct,
	}
}
