package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// VectorIndex is the FT index over one collection's record hashes: a TAG field
// with metadata tokens and a FLOAT32 HNSW vector field compared by cosine distance.
type VectorIndex struct {
	Name   string
	Prefix string

	TagField     string
	TagSeparator string

	VectorField string
	Dim         int
	// M is the HNSW max edges per node; 0 keeps the server default.
	M int
	// EFConstruct is the HNSW build-time candidate list size; 0 keeps the server default.
	EFConstruct int
}

// Validate checks the index is well-formed.
func (idx *VectorIndex) Validate() error {
	switch {
	case !IsValidIdentifier(idx.Name):
		return fmt.Errorf("invalid index name %q", idx.Name)
	case idx.Prefix == "":
		return errors.New("index prefix is required")
	case idx.TagField == "" || idx.VectorField == "":
		return errors.New("tag and vector fields are required")
	case idx.TagField == idx.VectorField:
		return fmt.Errorf("duplicate field name: %s", idx.TagField)
	case idx.Dim <= 0:
		return errors.New("vector field requires positive DIM")
	case idx.M < 0 || idx.EFConstruct < 0:
		return errors.New("HNSW parameters must not be negative")
	}
	return nil
}

// Args returns the FT.CREATE arguments after the command name.
func (idx *VectorIndex) Args() []string {
	args := []string{
		idx.Name, "ON", "HASH",
		"PREFIX", "1", idx.Prefix,
		"SCHEMA",
		idx.TagField, "TAG",
	}
	if idx.TagSeparator != "" {
		args = append(args, "SEPARATOR", idx.TagSeparator)
	}
	args = append(args, "CASESENSITIVE")

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(idx.Dim),
		"DISTANCE_METRIC", "COSINE",
	}
	if idx.M > 0 {
		attrs = append(attrs, "M", strconv.Itoa(idx.M))
	}
	if idx.EFConstruct > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(idx.EFConstruct))
	}
	args = append(args, idx.VectorField, "VECTOR", "HNSW", strconv.Itoa(len(attrs)))
	return append(args, attrs...)
}

// String renders the FT.CREATE command for logs.
func (idx *VectorIndex) String() string {
	return "FT.CREATE " + strings.Join(idx.Args(), " ")
}

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' && r != ':' && r != '-' {
			return false
		}
	}
	return true
}
