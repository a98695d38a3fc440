package record

import (
	"context"
	"testing"

	"github.com/kailas-cloud/vecrud/internal/db"
	"github.com/kailas-cloud/vecrud/internal/domain/metadata"
	domrec "github.com/kailas-cloud/vecrud/internal/domain/record"
	"github.com/kailas-cloud/vecrud/internal/repository/keyspace"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn      func(ctx context.Context, key string, fields map[string]string) error
	hsetNXFn    func(ctx context.Context, key, field, value string) (bool, error)
	hgetAllFn   func(ctx context.Context, key string) (map[string]string, error)
	delFn       func(ctx context.Context, key string) error
	existsFn    func(ctx context.Context, key string) (bool, error)
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HSetNX(ctx context.Context, key, field, value string) (bool, error) {
	if m.hsetNXFn != nil {
		return m.hsetNXFn(ctx, key, field, value)
	}
	return true, nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, keyspace.New("vecrud:"))
	return repo, ms
}

func testRecord(t *testing.T) domrec.Record {
	t.Helper()
	return domrec.Reconstruct("1", "ChromaDB es una base de datos vectorial",
		testVector(4),
		metadata.Metadata{"categoria": metadata.String("base de datos")},
	)
}

func testVector(dim int) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(i) * 0.25
	}
	return vec
}
