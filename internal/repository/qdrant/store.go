// Package qdrant stores collections in a Qdrant server through the official
// gRPC client. Record ids become UUIDv5 point ids; the original id and the
// document travel in the payload next to the flat metadata keys.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
)

// Reserved payload keys. Metadata keys never start with "__".
const (
	payloadID       = "__id"
	payloadDocument = "__document"
)

// pointNamespace seeds the UUIDv5 point ids derived from record ids.
var pointNamespace = uuid.MustParse("6f1c2d0e-4b7a-5e39-9a51-0c8d3f2e7b14")

// api is the subset of *qdrant.Client used by the repositories.
type api interface {
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Get(ctx context.Context, request *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
}

// Config holds the Qdrant connection settings.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// Store owns the Qdrant client shared by the collection and record repositories.
type Store struct {
	api    api
	closer func() error
}

// Open connects to Qdrant. Port defaults to 6334 (gRPC).
func Open(cfg Config) (*Store, error) {
	port := cfg.Port
	if port == 0 {
		port = 6334
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant client %s:%d: %w", cfg.Host, port, err)
	}
	return &Store{api: client, closer: client.Close}, nil
}

func newStore(a api) *Store {
	return &Store{api: a, closer: func() error { return nil }}
}

// Ping calls the server health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.api.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check: %w", err)
	}
	return nil
}

// Close releases the gRPC connection.
func (s *Store) Close() error {
	return s.closer()
}

// Collections returns the collection repository.
func (s *Store) Collections() *CollectionRepo { return &CollectionRepo{api: s.api} }

// Records returns the record repository.
func (s *Store) Records() *RecordRepo { return &RecordRepo{api: s.api} }

// pointID maps a record id to its stable point id.
func pointID(id string) *qdrant.PointId {
	return qdrant.NewID(uuid.NewSHA1(pointNamespace, []byte(id)).String())
}
