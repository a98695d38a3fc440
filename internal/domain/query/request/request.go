package request

import (
	"github.com/kailas-cloud/vecrud/internal/domain/query/filter"
)

// Query parameter limits.
const (
	// DefaultTopK is used when the caller asks for zero or fewer matches.
	DefaultTopK = 5
	// MaxTopK caps the number of matches a single query may return.
	MaxTopK = 100
)

// Request is a normalized similarity query. The text is kept verbatim; any
// string, including the empty one, goes to the embedder as is.
type Request struct {
	text  string
	where filter.Where
	topK  int
}

// New normalizes query parameters.
// topK <= 0 falls back to DefaultTopK; values above MaxTopK are clamped.
func New(text string, where filter.Where, topK int) Request {
	return NewWithLimits(text, where, topK, DefaultTopK, MaxTopK)
}

// NewWithLimits is New with configurable defaults. Non-positive limits fall
// back to the package constants.
func NewWithLimits(text string, where filter.Where, topK, defaultTopK, maxTopK int) Request {
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	if maxTopK <= 0 {
		maxTopK = MaxTopK
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	return Request{text: text, where: where, topK: min(topK, maxTopK)}
}

// Text returns the query text.
func (r Request) Text() string { return r.text }

// Where returns the metadata filter.
func (r Request) Where() filter.Where { return r.where }

// TopK returns the maximum number of matches.
func (r Request) TopK() int { return r.topK }
