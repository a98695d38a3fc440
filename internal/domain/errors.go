package domain

import "errors"

var (
	// ErrNotFound signals a missing record or collection.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate record id or collection.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidRecord signals a record that fails validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidFilter signals a malformed metadata filter.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidSchema signals an invalid collection definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
