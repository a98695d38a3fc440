package embcache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var errEmptyEntry = errors.New("empty cache entry")

// encodeVector lays the vector out as little-endian float32s.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 0, len(v)*4)
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// decodeVector reverses encodeVector. dim > 0 requires exactly dim components.
func decodeVector(raw []byte, dim int) ([]float32, error) {
	if len(raw) == 0 {
		return nil, errEmptyEntry
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("entry length %d is not a multiple of 4", len(raw))
	}
	n := len(raw) / 4
	if dim > 0 && n != dim {
		return nil, fmt.Errorf("entry has %d dimensions, want %d", n, dim)
	}
	vec := make([]float32, n)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, nil
}
