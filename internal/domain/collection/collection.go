package collection

import (
	"fmt"
	"regexp"
	"time"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// DefaultName is the collection opened when none is configured.
const DefaultName = "vector_db_demo"

// DistanceCosine is the only supported distance metric.
const DistanceCosine = "cosine"

// Collection is a named bucket of records with a fixed vector dimension (immutable value object).
type Collection struct {
	name      string
	vectorDim int
	distance  string
	createdAt int64
}

// ValidateName checks the collection naming rules.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("collection name too long (max 64)")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("collection name must be alphanumeric with underscores and hyphens")
	}
	return nil
}

// New validates and creates a Collection.
// Name: ^[a-zA-Z0-9_-]+$, 1-64 chars. VectorDim: > 0. Distance is cosine.
func New(name string, vectorDim int) (Collection, error) {
	if err := ValidateName(name); err != nil {
		return Collection{}, err
	}
	if vectorDim <= 0 {
		return Collection{}, fmt.Errorf("vector dimension must be positive")
	}
	return Collection{
		name:      name,
		vectorDim: vectorDim,
		distance:  DistanceCosine,
		createdAt: time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Collection without validation (storage hydration).
func Reconstruct(name string, vectorDim int, createdAt int64) Collection {
	return Collection{name: name, vectorDim: vectorDim, distance: DistanceCosine, createdAt: createdAt}
}

// Name returns the collection name.
func (c Collection) Name() string { return c.name }

// VectorDim returns the vector dimension.
func (c Collection) VectorDim() int { return c.vectorDim }

// Distance returns the distance metric.
func (c Collection) Distance() string { return c.distance }

// CreatedAt returns the creation timestamp (unix millis).
func (c Collection) CreatedAt() int64 { return c.createdAt }

// CheckVector verifies that vec matches the collection dimension.
func (c Collection) CheckVector(vec []float32) error {
	if len(vec) != c.vectorDim {
		return fmt.Errorf("collection %q expects %d dimensions, got %d", c.name, c.vectorDim, len(vec))
	}
	return nil
}
