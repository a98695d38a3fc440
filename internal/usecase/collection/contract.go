package collection

import (
	"context"

	domcol "github.com/kailas-cloud/vecrud/internal/domain/collection"
)

// Repository stores collection definitions. Each driver maps it onto its own
// notion of an index or collection.
type Repository interface {
	// Create returns domain.ErrAlreadyExists when the name is taken.
	Create(ctx context.Context, col domcol.Collection) error
	// Get returns domain.ErrNotFound for an unknown name.
	Get(ctx context.Context, name string) (domcol.Collection, error)
}
