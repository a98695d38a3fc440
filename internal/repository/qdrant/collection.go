package qdrant

import (
	"context"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/vecrud/internal/domain"
	domcol "github.com/kailas-cloud/vecrud/internal/domain/collection"
)

// CollectionRepo implements usecase/collection.Repository.
type CollectionRepo struct {
	api api
}

// Create creates a cosine collection with the collection's vector size.
func (r *CollectionRepo) Create(ctx context.Context, col domcol.Collection) error {
	exists, err := r.api.CollectionExists(ctx, col.Name())
	if err != nil {
		return fmt.Errorf("collection exists %s: %w", col.Name(), err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	err = r.api.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: col.Name(),
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(col.VectorDim()),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", col.Name(), err)
	}
	return nil
}

// Get returns a collection with the vector size reported by the server.
func (r *CollectionRepo) Get(ctx context.Context, name string) (domcol.Collection, error) {
	exists, err := r.api.CollectionExists(ctx, name)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("collection exists %s: %w", name, err)
	}
	if !exists {
		return domcol.Collection{}, domain.ErrNotFound
	}

	info, err := r.api.GetCollectionInfo(ctx, name)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("collection info %s: %w", name, err)
	}
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return domcol.Collection{}, fmt.Errorf("collection %s has no single dense vector config: %w",
			name, domain.ErrInvalidSchema)
	}
	return domcol.Reconstruct(name, int(params.GetSize()), 0), nil
}
