package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/vecrud/internal/domain/metadata"
)

// MaxConditions is the maximum number of equality conditions in a filter.
const MaxConditions = 32

// Equality is a single key = value clause.
type Equality struct {
	key   string
	value metadata.Value
}

// Key returns the metadata key.
func (e Equality) Key() string { return e.key }

// Value returns the expected value.
func (e Equality) Value() metadata.Value { return e.value }

// Where is a conjunction of equality clauses over record metadata.
// The zero value matches every record.
type Where struct {
	conditions []Equality
}

// New validates and creates a filter from key/value pairs. Conditions are kept in key order.
func New(md metadata.Metadata) (Where, error) {
	if len(md) > MaxConditions {
		return Where{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	conds := make([]Equality, 0, len(md))
	for _, k := range md.Keys() {
		if k == "" {
			return Where{}, fmt.Errorf("filter key is required")
		}
		if strings.HasPrefix(k, metadata.ReservedPrefix) {
			return Where{}, fmt.Errorf("filter key %q uses reserved prefix", k)
		}
		v := md[k]
		if v.Kind() == 0 {
			return Where{}, fmt.Errorf("filter value is required for key %q", k)
		}
		conds = append(conds, Equality{key: k, value: v})
	}
	return Where{conditions: conds}, nil
}

// Conditions returns the equality clauses.
func (w Where) Conditions() []Equality { return w.conditions }

// IsEmpty reports whether the filter has no conditions.
func (w Where) IsEmpty() bool { return len(w.conditions) == 0 }

// Matches reports whether md satisfies every clause.
func (w Where) Matches(md metadata.Metadata) bool {
	for _, c := range w.conditions {
		v, ok := md[c.key]
		if !ok || !v.Equal(c.value) {
			return false
		}
	}
	return true
}

// Metadata returns the clauses as a metadata map.
func (w Where) Metadata() metadata.Metadata {
	md := make(metadata.Metadata, len(w.conditions))
	for _, c := range w.conditions {
		md[c.key] = c.value
	}
	return md
}
