package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the scalar type carried by a Value.
type Kind int

const (
	// KindString is a text value.
	KindString Kind = iota + 1
	// KindNumber is a float64 value.
	KindNumber
	// KindBool is a boolean value.
	KindBool
)

// Value is a scalar metadata value (string, number or bool).
type Value struct {
	kind Kind
	s    string
	n    float64
	b    bool
}

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number creates a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// FromAny converts a Go scalar into a Value.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case Value:
		if x.kind == 0 {
			return Value{}, fmt.Errorf("empty value")
		}
		return x, nil
	default:
		return Value{}, fmt.Errorf("unsupported metadata type %T", v)
	}
}

// ParseScalar interprets a command-line value: true/false become bools,
// finite numeric literals become numbers, everything else (including "nan"
// and "inf") stays a string.
func ParseScalar(raw string) Value {
	switch raw {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil && isFinite(n) {
		return Number(n)
	}
	return String(raw)
}

func isFinite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// Kind returns the scalar type.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload.
func (v Value) Str() string { return v.s }

// Num returns the numeric payload.
func (v Value) Num() float64 { return v.n }

// Boolean returns the boolean payload.
func (v Value) Boolean() bool { return v.b }

// Any returns the value as a plain Go scalar.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return v.n
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// Equal reports whether both values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.s == o.s && v.n == o.n && v.b == o.b
}

// String renders the value for humans.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.s)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "<nil>"
	}
}

// Encode renders the value as a type-prefixed string ("s:", "n:", "b:").
// Stores that only keep string metadata use it to preserve types and equality.
func (v Value) Encode() string {
	switch v.kind {
	case KindString:
		return "s:" + v.s
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindBool:
		return "b:" + strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Decode parses a string produced by Encode.
func Decode(raw string) (Value, error) {
	prefix, body, ok := strings.Cut(raw, ":")
	if !ok {
		return Value{}, fmt.Errorf("missing type prefix in %q", raw)
	}
	switch prefix {
	case "s":
		return String(body), nil
	case "n":
		n, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return Value{}, fmt.Errorf("parse number %q: %w", body, err)
		}
		return Number(n), nil
	case "b":
		b, err := strconv.ParseBool(body)
		if err != nil {
			return Value{}, fmt.Errorf("parse bool %q: %w", body, err)
		}
		return Bool(b), nil
	default:
		return Value{}, fmt.Errorf("unknown type prefix %q", prefix)
	}
}

// Token returns a fixed-width hex digest of a key/value pair, safe to use
// as a TAG value in a search index.
func Token(key string, v Value) string {
	sum := sha256.Sum256([]byte(key + "\x00" + v.Encode()))
	return hex.EncodeToString(sum[:16])
}
