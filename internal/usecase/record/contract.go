package record

import (
	"context"

	"github.com/kailas-cloud/vecrud/internal/domain"
	"github.com/kailas-cloud/vecrud/internal/domain/query/filter"
	"github.com/kailas-cloud/vecrud/internal/domain/query/result"
	domrec "github.com/kailas-cloud/vecrud/internal/domain/record"
)

// Repository defines the storage contract for records.
type Repository interface {
	// Insert fails with domain.ErrAlreadyExists when the id is taken.
	Insert(ctx context.Context, collectionName string, rec domrec.Record) error
	// Get fails with domain.ErrNotFound when the id is absent.
	Get(ctx context.Context, collectionName, id string) (domrec.Record, error)
	// Replace fails with domain.ErrNotFound when the id is absent.
	Replace(ctx context.Context, collectionName string, rec domrec.Record) error
	// Delete succeeds for absent ids.
	Delete(ctx context.Context, collectionName, id string) error
	// Search returns at most topK matches satisfying where, closest first.
	Search(ctx context.Context, collectionName string, vector []float32, where filter.Where, topK int) ([]result.Match, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
