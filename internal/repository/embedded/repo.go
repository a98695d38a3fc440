// Package embedded stores collections in-process with chromem-go, optionally
// persisted to a local directory. It is the zero-dependency default driver.
package embedded

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/kailas-cloud/vecrud/internal/domain"
	domcol "github.com/kailas-cloud/vecrud/internal/domain/collection"
	"github.com/kailas-cloud/vecrud/internal/domain/metadata"
	"github.com/kailas-cloud/vecrud/internal/domain/query/filter"
	"github.com/kailas-cloud/vecrud/internal/domain/query/result"
	domrec "github.com/kailas-cloud/vecrud/internal/domain/record"
)

// errNoEmbedding is returned if chromem ever tries to embed on its own;
// vectors always come from the configured embedder.
var errNoEmbedding = errors.New("embedded store: embeddings must be supplied by the caller")

func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedding
}

// Config selects in-memory or on-disk storage.
type Config struct {
	// PersistDir enables persistence when non-empty.
	PersistDir string
	// Compress gzips persisted files.
	Compress bool
}

// Store owns the chromem database shared by the collection and record repositories.
// Collection definitions live beside it: in memory, and in a manifest file per
// collection when persisted.
type Store struct {
	db         *chromem.DB
	persistDir string
	vectorDim  int

	mu        sync.Mutex
	manifests map[string]manifest
}

// Open opens the chromem database. vectorDim is assumed for persisted
// collections that predate manifests.
func Open(cfg Config, vectorDim int) (*Store, error) {
	s := &Store{vectorDim: vectorDim, manifests: make(map[string]manifest)}
	if cfg.PersistDir == "" {
		s.db = chromem.NewDB()
		return s, nil
	}
	db, err := chromem.NewPersistentDB(cfg.PersistDir, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("open chromem db %s: %w", cfg.PersistDir, err)
	}
	s.db = db
	s.persistDir = filepath.Clean(cfg.PersistDir)
	return s, nil
}

// Ping always succeeds: the store lives in-process.
func (s *Store) Ping(_ context.Context) error { return nil }

// Collections returns the collection repository.
func (s *Store) Collections() *CollectionRepo { return &CollectionRepo{store: s} }

// Records returns the record repository.
func (s *Store) Records() *RecordRepo { return &RecordRepo{store: s} }

func (s *Store) collection(name string) (*chromem.Collection, error) {
	c := s.db.GetCollection(name, noEmbedding)
	if c == nil {
		return nil, fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	return c, nil
}

// CollectionRepo implements usecase/collection.Repository.
type CollectionRepo struct {
	store *Store
}

// Create creates a chromem collection and records its definition.
func (r *CollectionRepo) Create(_ context.Context, col domcol.Collection) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db.GetCollection(col.Name(), noEmbedding) != nil {
		return domain.ErrAlreadyExists
	}
	m := manifestOf(col)
	meta := map[string]string{
		"vector_dim": strconv.Itoa(m.VectorDim),
		"distance":   m.Distance,
		"created_at": strconv.FormatInt(m.CreatedAt, 10),
	}
	if _, err := s.db.CreateCollection(col.Name(), meta, noEmbedding); err != nil {
		return fmt.Errorf("create collection %s: %w", col.Name(), err)
	}
	if s.persistDir != "" {
		if err := writeManifest(s.persistDir, col.Name(), m); err != nil {
			if derr := s.db.DeleteCollection(col.Name()); derr != nil {
				err = errors.Join(err, derr)
			}
			return fmt.Errorf("create collection %s: %w", col.Name(), err)
		}
	}
	s.manifests[col.Name()] = m
	return nil
}

// Get returns a collection with the dimension it was created with.
// chromem keeps collection metadata private, so it comes from the manifest.
func (r *CollectionRepo) Get(_ context.Context, name string) (domcol.Collection, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db.GetCollection(name, noEmbedding) == nil {
		return domcol.Collection{}, domain.ErrNotFound
	}
	if m, ok := s.manifests[name]; ok {
		return m.collection(name), nil
	}
	if s.persistDir != "" {
		m, ok, err := readManifest(s.persistDir, name)
		if err != nil {
			return domcol.Collection{}, fmt.Errorf("collection %s: %w", name, err)
		}
		if ok {
			s.manifests[name] = m
			return m.collection(name), nil
		}
	}
	return domcol.Reconstruct(name, s.vectorDim, 0), nil
}

// RecordRepo implements usecase/record.Repository.
type RecordRepo struct {
	store *Store
}

// Insert adds a record; an existing id fails with domain.ErrAlreadyExists.
func (r *RecordRepo) Insert(ctx context.Context, collectionName string, rec domrec.Record) error {
	c, err := r.store.collection(collectionName)
	if err != nil {
		return err
	}
	if _, err := c.GetByID(ctx, rec.ID()); err == nil {
		return fmt.Errorf("record %q: %w", rec.ID(), domain.ErrAlreadyExists)
	}
	return r.put(ctx, c, rec)
}

// Get returns a record by id.
func (r *RecordRepo) Get(ctx context.Context, collectionName, id string) (domrec.Record, error) {
	c, err := r.store.collection(collectionName)
	if err != nil {
		return domrec.Record{}, err
	}
	doc, err := c.GetByID(ctx, id)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("record %q: %w", id, domain.ErrNotFound)
	}
	md, err := metadata.DecodeMap(doc.Metadata)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("record %q: %w", id, err)
	}
	return domrec.Reconstruct(doc.ID, doc.Content, doc.Embedding, md), nil
}

// Replace overwrites an existing record.
func (r *RecordRepo) Replace(ctx context.Context, collectionName string, rec domrec.Record) error {
	c, err := r.store.collection(collectionName)
	if err != nil {
		return err
	}
	if _, err := c.GetByID(ctx, rec.ID()); err != nil {
		return fmt.Errorf("record %q: %w", rec.ID(), domain.ErrNotFound)
	}
	return r.put(ctx, c, rec)
}

// Delete removes a record. Deleting a missing id is not an error.
func (r *RecordRepo) Delete(ctx context.Context, collectionName, id string) error {
	c, err := r.store.collection(collectionName)
	if err != nil {
		return err
	}
	if _, err := c.GetByID(ctx, id); err != nil {
		return nil
	}
	if err := c.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}
	return nil
}

// Search returns up to topK records matching where, closest first.
func (r *RecordRepo) Search(
	ctx context.Context, collectionName string,
	vector []float32, where filter.Where, topK int,
) ([]result.Match, error) {
	c, err := r.store.collection(collectionName)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults above the collection size.
	n := min(topK, c.Count())
	if n <= 0 {
		return nil, nil
	}

	var whereMap map[string]string
	if !where.IsEmpty() {
		whereMap = where.Metadata().Encoded()
	}

	hits, err := c.QueryEmbedding(ctx, vector, n, whereMap, nil)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collectionName, err)
	}

	matches := make([]result.Match, 0, len(hits))
	for _, h := range hits {
		md, err := metadata.DecodeMap(h.Metadata)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", h.ID, err)
		}
		matches = append(matches, result.NewMatch(h.ID, float64(h.Similarity), h.Content, md, h.Embedding))
	}
	return matches, nil
}

func (r *RecordRepo) put(ctx context.Context, c *chromem.Collection, rec domrec.Record) error {
	doc := chromem.Document{
		ID:        rec.ID(),
		Metadata:  rec.Metadata().Encoded(),
		Embedding: rec.Embedding(),
		Content:   rec.Text(),
	}
	if err := c.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document %q: %w", rec.ID(), err)
	}
	return nil
}
