// Package db defines the Redis/Valkey store contract shared by the record and
// collection repositories and the embedding cache. Drivers live in subpackages.
package db

import (
	"context"
	"time"
)

// Store is everything the valkey and redis drivers expose. Repositories depend
// on narrower local interfaces.
type Store interface {
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()

	RecordStore
	KVStore

	CreateIndex(ctx context.Context, idx *VectorIndex) error
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// RecordStore keeps records and collection metadata as hashes.
type RecordStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	// HSetNX sets field only when it is absent and reports whether it was written.
	HSetNX(ctx context.Context, key, field, value string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore backs the embedding cache.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
