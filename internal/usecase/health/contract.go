package health

import "context"

// StorePinger is satisfied by every vector store driver.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker probes the embedding provider. A nil error means the
// provider answered.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
