package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecrud/internal/domain"
	domcol "github.com/kailas-cloud/vecrud/internal/domain/collection"
	"github.com/kailas-cloud/vecrud/internal/domain/metadata"
	"github.com/kailas-cloud/vecrud/internal/domain/query/filter"
	"github.com/kailas-cloud/vecrud/internal/domain/query/request"
	"github.com/kailas-cloud/vecrud/internal/domain/query/result"
	domrec "github.com/kailas-cloud/vecrud/internal/domain/record"
	"github.com/kailas-cloud/vecrud/internal/logger"
	"github.com/kailas-cloud/vecrud/internal/metrics"
)

// Service handles record CRUD and similarity queries on one open collection.
type Service struct {
	repo          Repository
	col           domcol.Collection
	docEmbedder   Embedder
	queryEmbedder Embedder
	defaultTopK   int
	maxTopK       int
}

// New creates a record service bound to an open collection.
func New(repo Repository, col domcol.Collection, docEmbedder, queryEmbedder Embedder) *Service {
	return &Service{
		repo:          repo,
		col:           col,
		docEmbedder:   docEmbedder,
		queryEmbedder: queryEmbedder,
		defaultTopK:   request.DefaultTopK,
		maxTopK:       request.MaxTopK,
	}
}

// WithLimits configures the topK default and ceiling.
func (s *Service) WithLimits(defaultTopK, maxTopK int) *Service {
	if defaultTopK > 0 {
		s.defaultTopK = defaultTopK
	}
	if maxTopK > 0 {
		s.maxTopK = maxTopK
	}
	return s
}

// Collection returns the collection the service operates on.
func (s *Service) Collection() domcol.Collection { return s.col }

// Create embeds text and inserts a new record. A taken id fails with
// domain.ErrAlreadyExists; the stored record is left untouched.
func (s *Service) Create(ctx context.Context, id, text string, md metadata.Metadata) (rec domrec.Record, err error) {
	defer metrics.ObserveOperation("create", time.Now(), &err)

	rec, err = s.build(ctx, id, text, md)
	if err != nil {
		return domrec.Record{}, err
	}
	if err := s.repo.Insert(ctx, s.col.Name(), rec); err != nil {
		return domrec.Record{}, fmt.Errorf("insert record: %w", err)
	}

	logger.FromContext(ctx).Debug("Record created",
		zap.String("collection", s.col.Name()),
		zap.String("id", id),
	)
	return rec, nil
}

// Read returns the record or a not-found lookup. Only store failures are errors.
func (s *Service) Read(ctx context.Context, id string) (lookup domrec.Lookup, err error) {
	defer metrics.ObserveOperation("read", time.Now(), &err)

	rec, err := s.repo.Get(ctx, s.col.Name(), id)
	switch {
	case err == nil:
		return domrec.Found(rec), nil
	case errors.Is(err, domain.ErrNotFound):
		return domrec.NotFound(id), nil
	default:
		return domrec.Lookup{}, fmt.Errorf("get record: %w", err)
	}
}

// Update re-embeds text and replaces the whole record. Metadata is not merged.
// Updating an absent id fails with domain.ErrNotFound.
func (s *Service) Update(ctx context.Context, id, text string, md metadata.Metadata) (rec domrec.Record, err error) {
	defer metrics.ObserveOperation("update", time.Now(), &err)

	rec, err = s.build(ctx, id, text, md)
	if err != nil {
		return domrec.Record{}, err
	}
	if err := s.repo.Replace(ctx, s.col.Name(), rec); err != nil {
		return domrec.Record{}, fmt.Errorf("replace record: %w", err)
	}

	logger.FromContext(ctx).Debug("Record updated",
		zap.String("collection", s.col.Name()),
		zap.String("id", id),
	)
	return rec, nil
}

// Delete removes a record. Deleting an absent id succeeds.
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	defer metrics.ObserveOperation("delete", time.Now(), &err)

	if err := s.repo.Delete(ctx, s.col.Name(), id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// NewQuery builds a request with the service's topK limits.
func (s *Service) NewQuery(text string, where metadata.Metadata, topK int) (request.Request, error) {
	w, err := filter.New(where)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
	}
	return request.NewWithLimits(text, w, topK, s.defaultTopK, s.maxTopK), nil
}

// Query embeds the request text and returns the nearest records that satisfy
// every filter equality. No match yields result.NoResults(), not an error.
func (s *Service) Query(ctx context.Context, req request.Request) (set result.Set, err error) {
	defer metrics.ObserveOperation("query", time.Now(), &err)

	emb, err := s.queryEmbedder.Embed(ctx, req.Text())
	if err != nil {
		return result.Set{}, fmt.Errorf("vectorize query: %w", err)
	}
	if err := s.checkDim(emb.Embedding); err != nil {
		return result.Set{}, err
	}

	topK := min(req.TopK(), s.maxTopK)
	matches, err := s.repo.Search(ctx, s.col.Name(), emb.Embedding, req.Where(), topK)
	if err != nil {
		return result.Set{}, fmt.Errorf("search records: %w", err)
	}

	logger.FromContext(ctx).Debug("Query completed",
		zap.String("collection", s.col.Name()),
		zap.Int("conditions", len(req.Where().Conditions())),
		zap.Int("top_k", topK),
		zap.Int("matches", len(matches)),
	)

	if len(matches) == 0 {
		return result.NoResults(), nil
	}
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return result.New(matches), nil
}

// build validates the record and attaches its embedding.
func (s *Service) build(ctx context.Context, id, text string, md metadata.Metadata) (domrec.Record, error) {
	rec, err := domrec.New(id, text, md)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("validate record: %w: %w", domain.ErrInvalidRecord, err)
	}

	emb, err := s.docEmbedder.Embed(ctx, text)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("vectorize record: %w", err)
	}
	if err := s.checkDim(emb.Embedding); err != nil {
		return domrec.Record{}, err
	}
	return rec.WithEmbedding(emb.Embedding), nil
}

func (s *Service) checkDim(vec []float32) error {
	if err := s.col.CheckVector(vec); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrVectorDimMismatch, err)
	}
	return nil
}
