package record

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/vecrud/internal/domain/metadata"
	domrec "github.com/kailas-cloud/vecrud/internal/domain/record"
	"github.com/kailas-cloud/vecrud/internal/repository/keyspace"
)

// buildHashFields converts a domain Record into a flat map[string]string for HSET.
// Every reserved field is always written, so HSET fully replaces a previous version.
func buildHashFields(rec *domrec.Record) (map[string]string, error) {
	md := rec.Metadata()
	if md == nil {
		md = metadata.Metadata{}
	}
	mdJSON, err := json.Marshal(md)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return map[string]string{
		keyspace.FieldID:       rec.ID(),
		keyspace.FieldContent:  rec.Text(),
		keyspace.FieldMetadata: string(mdJSON),
		keyspace.FieldFilter:   strings.Join(md.Tokens(), keyspace.FilterSeparator),
		keyspace.FieldVector:   vectorToBytes(rec.Embedding()),
	}, nil
}

// parseHashFields converts a flat hash map back into a domain Record.
func parseHashFields(fallbackID string, m map[string]string) (domrec.Record, error) {
	id := m[keyspace.FieldID]
	if id == "" {
		id = fallbackID
	}

	var md metadata.Metadata
	if raw := m[keyspace.FieldMetadata]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &md); err != nil {
			return domrec.Record{}, fmt.Errorf("record %s: %w", id, err)
		}
		if len(md) == 0 {
			md = nil
		}
	}

	return domrec.Reconstruct(id, m[keyspace.FieldContent], bytesToVector(m[keyspace.FieldVector]), md), nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
