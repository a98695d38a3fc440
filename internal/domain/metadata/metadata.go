package metadata

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ReservedPrefix marks keys used internally by storage drivers.
const ReservedPrefix = "__"

// MaxKeys is the maximum number of metadata keys per record.
const MaxKeys = 64

// Metadata is a flat map of scalar values attached to a record.
type Metadata map[string]Value

// FromMap converts plain Go scalars into Metadata.
func FromMap(m map[string]any) (Metadata, error) {
	if m == nil {
		return nil, nil
	}
	md := make(Metadata, len(m))
	for k, raw := range m {
		v, err := FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("metadata key %q: %w", k, err)
		}
		md[k] = v
	}
	return md, nil
}

// Validate checks key names and count.
func (m Metadata) Validate() error {
	if len(m) > MaxKeys {
		return fmt.Errorf("too many metadata keys (max %d)", MaxKeys)
	}
	for k, v := range m {
		if k == "" {
			return fmt.Errorf("metadata key is required")
		}
		if strings.HasPrefix(k, ReservedPrefix) {
			return fmt.Errorf("metadata key %q uses reserved prefix %q", k, ReservedPrefix)
		}
		if v.kind == 0 {
			return fmt.Errorf("metadata key %q has no value", k)
		}
		if v.kind == KindNumber && !isFinite(v.n) {
			return fmt.Errorf("metadata key %q has non-finite number %v", k, v.n)
		}
	}
	return nil
}

// Keys returns the keys in sorted order.
func (m Metadata) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// ToMap converts Metadata to plain Go scalars.
func (m Metadata) ToMap() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Any()
	}
	return out
}

// Clone returns a shallow copy.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

// Equal reports whether both maps hold the same keys and values.
func (m Metadata) Equal(o Metadata) bool {
	return maps.EqualFunc(m, o, Value.Equal)
}

// Encoded returns the type-prefixed string form of every value.
func (m Metadata) Encoded() map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.Encode()
	}
	return out
}

// DecodeMap parses a map produced by Encoded.
func DecodeMap(raw map[string]string) (Metadata, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	md := make(Metadata, len(raw))
	for k, s := range raw {
		v, err := Decode(s)
		if err != nil {
			return nil, fmt.Errorf("metadata key %q: %w", k, err)
		}
		md[k] = v
	}
	return md, nil
}

// Tokens returns the hashed key/value tokens in key order.
func (m Metadata) Tokens() []string {
	keys := m.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, Token(k, m[k]))
	}
	return out
}

// String renders the metadata as {k: v, ...} with sorted keys.
func (m Metadata) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%q: %s", k, m[k]))
	}
	sb.WriteByte('}')
	return sb.String()
}

// MarshalJSON encodes the metadata as a plain JSON object.
func (m Metadata) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(m.ToMap())
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return b, nil
}

// UnmarshalJSON decodes a plain JSON object of scalars.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal metadata: %w", err)
	}
	md, err := FromMap(raw)
	if err != nil {
		return err
	}
	*m = md
	return nil
}
