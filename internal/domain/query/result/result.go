package result

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/vecrud/internal/domain/metadata"
)

// NoResultsMessage is the text shown when a query matches nothing.
const NoResultsMessage = "No results found with the given filters"

// Match is a single query hit.
type Match struct {
	id        string
	score     float64
	document  string
	metadata  metadata.Metadata
	embedding []float32
}

// NewMatch creates a query hit.
func NewMatch(id string, score float64, document string, md metadata.Metadata, embedding []float32) Match {
	return Match{id: id, score: score, document: document, metadata: md, embedding: embedding}
}

// ID returns the record identifier.
func (m Match) ID() string { return m.id }

// Score returns the similarity score (higher is closer).
func (m Match) Score() float64 { return m.score }

// Document returns the record text.
func (m Match) Document() string { return m.document }

// Metadata returns the record metadata.
func (m Match) Metadata() metadata.Metadata { return m.metadata }

// Embedding returns the record vector.
func (m Match) Embedding() []float32 { return m.embedding }

// Set is a ranked list of matches, closest first. An empty Set is the
// "no results" outcome of a query, which is not an error.
type Set struct {
	matches []Match
}

// New creates a Set from ranked matches.
func New(matches []Match) Set { return Set{matches: matches} }

// NoResults returns the empty outcome.
func NoResults() Set { return Set{} }

// Found reports whether the query matched anything.
func (s Set) Found() bool { return len(s.matches) > 0 }

// Len returns the number of matches.
func (s Set) Len() int { return len(s.matches) }

// Matches returns the ranked hits.
func (s Set) Matches() []Match { return s.matches }

// IDs returns the identifiers in rank order.
func (s Set) IDs() []string {
	out := make([]string, len(s.matches))
	for i, m := range s.matches {
		out[i] = m.id
	}
	return out
}

// Documents returns the texts in rank order.
func (s Set) Documents() []string {
	out := make([]string, len(s.matches))
	for i, m := range s.matches {
		out[i] = m.document
	}
	return out
}

// Metadatas returns the metadata maps in rank order.
func (s Set) Metadatas() []metadata.Metadata {
	out := make([]metadata.Metadata, len(s.matches))
	for i, m := range s.matches {
		out[i] = m.metadata
	}
	return out
}

// Embeddings returns the vectors in rank order.
func (s Set) Embeddings() [][]float32 {
	out := make([][]float32, len(s.matches))
	for i, m := range s.matches {
		out[i] = m.embedding
	}
	return out
}

// Scores returns the similarity scores in rank order.
func (s Set) Scores() []float64 {
	out := make([]float64, len(s.matches))
	for i, m := range s.matches {
		out[i] = m.score
	}
	return out
}

// String renders one line per match, or the no-results message.
func (s Set) String() string {
	if !s.Found() {
		return NoResultsMessage
	}
	var sb strings.Builder
	for i, m := range s.matches {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d. id=%s score=%.4f document=%s metadata=%s",
			i+1, m.id, m.score, strconv.Quote(m.document), m.metadata)
	}
	return sb.String()
}
