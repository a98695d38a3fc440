package record

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/vecrud/internal/db"
	"github.com/kailas-cloud/vecrud/internal/domain"
	"github.com/kailas-cloud/vecrud/internal/domain/metadata"
	"github.com/kailas-cloud/vecrud/internal/domain/query/filter"
	"github.com/kailas-cloud/vecrud/internal/domain/query/result"
	domrec "github.com/kailas-cloud/vecrud/internal/domain/record"
	"github.com/kailas-cloud/vecrud/internal/repository/keyspace"
)

// store is the consumer interface for records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetNX(ctx context.Context, key, field, value string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// searchFields are the hash fields returned for every KNN hit.
var searchFields = []string{
	keyspace.FieldID, keyspace.FieldContent, keyspace.FieldMetadata, keyspace.FieldVector,
}

// Repo implements usecase/record.Repository on Redis/Valkey hashes.
type Repo struct {
	store store
	keys  keyspace.Keyspace
}

// New creates a record repository.
func New(s store, keys keyspace.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// Insert stores a new record. HSETNX on the id field claims the key, so a
// duplicate id fails with domain.ErrAlreadyExists and leaves the stored record intact.
func (r *Repo) Insert(ctx context.Context, collectionName string, rec domrec.Record) error {
	key := r.keys.Record(collectionName, rec.ID())
	fields, err := buildHashFields(&rec)
	if err != nil {
		return err
	}

	claimed, err := r.store.HSetNX(ctx, key, keyspace.FieldID, rec.ID())
	if err != nil {
		return fmt.Errorf("hsetnx %s: %w", key, err)
	}
	if !claimed {
		return fmt.Errorf("record %q: %w", rec.ID(), domain.ErrAlreadyExists)
	}

	if err := r.store.HSet(ctx, key, fields); err != nil {
		cleanupErr := r.store.Del(ctx, key)
		return errors.Join(fmt.Errorf("hset %s: %w", key, err), cleanupErr)
	}
	return nil
}

// Get returns a record by id.
func (r *Repo) Get(ctx context.Context, collectionName, id string) (domrec.Record, error) {
	key := r.keys.Record(collectionName, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domrec.Record{}, fmt.Errorf("record %q: %w", id, domain.ErrNotFound)
	}
	return parseHashFields(id, m)
}

// Replace overwrites every field of an existing record.
func (r *Repo) Replace(ctx context.Context, collectionName string, rec domrec.Record) error {
	key := r.keys.Record(collectionName, rec.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return fmt.Errorf("record %q: %w", rec.ID(), domain.ErrNotFound)
	}

	fields, err := buildHashFields(&rec)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Delete removes a record. Deleting a missing id is not an error.
func (r *Repo) Delete(ctx context.Context, collectionName, id string) error {
	key := r.keys.Record(collectionName, id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Search runs a KNN query pre-filtered by metadata equality and returns hits closest first.
func (r *Repo) Search(
	ctx context.Context, collectionName string,
	vector []float32, where filter.Where, topK int,
) ([]result.Match, error) {
	q := &db.KNNQuery{
		IndexName:    r.keys.Index(collectionName),
		VectorField:  keyspace.FieldVector,
		Filters:      tagFilters(where),
		Vector:       vector,
		K:            topK,
		ReturnFields: searchFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", collectionName, err)
	}

	prefix := r.keys.RecordPrefix(collectionName)
	matches := make([]result.Match, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		rec, err := parseHashFields(strings.TrimPrefix(e.Key, prefix), e.Fields)
		if err != nil {
			return nil, err
		}
		matches = append(matches, result.NewMatch(rec.ID(), e.Score, rec.Text(), rec.Metadata(), rec.Embedding()))
	}

	slices.SortStableFunc(matches, func(a, b result.Match) int {
		switch {
		case a.Score() > b.Score():
			return -1
		case a.Score() < b.Score():
			return 1
		default:
			return 0
		}
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// tagFilters maps each equality to its hashed token on the filter TAG field.
func tagFilters(where filter.Where) []db.TagFilter {
	conds := where.Conditions()
	if len(conds) == 0 {
		return nil
	}
	out := make([]db.TagFilter, 0, len(conds))
	for _, c := range conds {
		out = append(out, db.TagFilter{
			Field: keyspace.FieldFilter,
			Value: metadata.Token(c.Key(), c.Value()),
		})
	}
	return out
}
