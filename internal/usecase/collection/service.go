package collection

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecrud/internal/domain"
	domcol "github.com/kailas-cloud/vecrud/internal/domain/collection"
	"github.com/kailas-cloud/vecrud/internal/logger"
)

// Service opens collections.
type Service struct {
	repo      Repository
	vectorDim int
}

// New creates a collection service. vectorDim is the embedding model dimension.
func New(repo Repository, vectorDim int) *Service {
	return &Service{repo: repo, vectorDim: vectorDim}
}

// Open returns the named collection, creating it when absent. Repeated
// opens reuse the stored collection; created reports whether this call made it.
func (s *Service) Open(ctx context.Context, name string) (col domcol.Collection, created bool, err error) {
	col, err = s.repo.Get(ctx, name)
	switch {
	case err == nil:
		return s.checkDim(col)
	case !errors.Is(err, domain.ErrNotFound):
		return domcol.Collection{}, false, fmt.Errorf("get collection: %w", err)
	}

	col, err = domcol.New(name, s.vectorDim)
	if err != nil {
		return domcol.Collection{}, false, fmt.Errorf("validate collection: %w: %w", domain.ErrInvalidSchema, err)
	}

	err = s.repo.Create(ctx, col)
	switch {
	case err == nil:
		logger.FromContext(ctx).Info("Collection created",
			zap.String("collection", name),
			zap.Int("vector_dim", s.vectorDim),
		)
		return col, true, nil
	case errors.Is(err, domain.ErrAlreadyExists):
		// Lost a race with another opener: use what is stored.
		col, err = s.repo.Get(ctx, name)
		if err != nil {
			return domcol.Collection{}, false, fmt.Errorf("get collection: %w", err)
		}
		return s.checkDim(col)
	default:
		return domcol.Collection{}, false, fmt.Errorf("create collection: %w", err)
	}
}

// Get retrieves a collection by name.
func (s *Service) Get(ctx context.Context, name string) (domcol.Collection, error) {
	col, err := s.repo.Get(ctx, name)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("get collection: %w", err)
	}
	return col, nil
}

func (s *Service) checkDim(col domcol.Collection) (domcol.Collection, bool, error) {
	if col.VectorDim() != s.vectorDim {
		return domcol.Collection{}, false, fmt.Errorf(
			"collection %s has dimension %d, embedding model produces %d: %w",
			col.Name(), col.VectorDim(), s.vectorDim, domain.ErrVectorDimMismatch)
	}
	return col, false, nil
}
