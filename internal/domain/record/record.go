package record

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/vecrud/internal/domain/metadata"
)

// MaxIDLength is the maximum record identifier size in bytes.
const MaxIDLength = 256

// Record is a stored document with its embedding (immutable value object).
type Record struct {
	id        string
	text      string
	embedding []float32
	metadata  metadata.Metadata
}

// New validates and creates a Record without an embedding.
// ID: non-empty, max 256 bytes. Text may be empty. Metadata keys must not be reserved.
func New(id, text string, md metadata.Metadata) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("record ID is required")
	}
	if len(id) > MaxIDLength {
		return Record{}, fmt.Errorf("record ID too long (max %d)", MaxIDLength)
	}
	if err := md.Validate(); err != nil {
		return Record{}, err
	}
	return Record{id: id, text: text, metadata: md.Clone()}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(id, text string, embedding []float32, md metadata.Metadata) Record {
	return Record{id: id, text: text, embedding: embedding, metadata: md}
}

// ID returns the record identifier.
func (r Record) ID() string { return r.id }

// Text returns the document text.
func (r Record) Text() string { return r.text }

// Embedding returns the embedding vector.
func (r Record) Embedding() []float32 { return r.embedding }

// Metadata returns the scalar metadata.
func (r Record) Metadata() metadata.Metadata { return r.metadata }

// WithEmbedding returns a copy with the given vector.
func (r Record) WithEmbedding(vec []float32) Record {
	r.embedding = slices.Clone(vec)
	return r
}
