package db

import (
	"slices"
	"strings"
	"testing"
)

func testIndex() VectorIndex {
	return VectorIndex{
		Name:         "vecrud:idx:demo",
		Prefix:       "vecrud:rec:demo:",
		TagField:     "__filter",
		TagSeparator: ",",
		VectorField:  "__vector",
		Dim:          384,
		M:            16,
		EFConstruct:  200,
	}
}

func TestVectorIndex_Args(t *testing.T) {
	idx := testIndex()
	want := []string{
		"vecrud:idx:demo", "ON", "HASH",
		"PREFIX", "1", "vecrud:rec:demo:",
		"SCHEMA",
		"__filter", "TAG", "SEPARATOR", ",", "CASESENSITIVE",
		"__vector", "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32", "DIM", "384", "DISTANCE_METRIC", "COSINE",
		"M", "16", "EF_CONSTRUCTION", "200",
	}
	if got := idx.Args(); !slices.Equal(got, want) {
		t.Errorf("unexpected args:\ngot:  %v\nwant: %v", got, want)
	}
}

func TestVectorIndex_ArgsServerDefaults(t *testing.T) {
	idx := testIndex()
	idx.M = 0
	idx.EFConstruct = 0
	idx.TagSeparator = ""

	args := idx.Args()
	if slices.Contains(args, "M") || slices.Contains(args, "EF_CONSTRUCTION") || slices.Contains(args, "SEPARATOR") {
		t.Errorf("zero params must be omitted: %v", args)
	}
	if !slices.Contains(args, "6") {
		t.Errorf("expected 6 vector attributes: %v", args)
	}
}

func TestVectorIndex_Validate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*VectorIndex)
	}{
		{"empty name", func(i *VectorIndex) { i.Name = "" }},
		{"invalid name", func(i *VectorIndex) { i.Name = "idx demo" }},
		{"no prefix", func(i *VectorIndex) { i.Prefix = "" }},
		{"no tag field", func(i *VectorIndex) { i.TagField = "" }},
		{"duplicate field", func(i *VectorIndex) { i.VectorField = i.TagField }},
		{"zero dim", func(i *VectorIndex) { i.Dim = 0 }},
		{"negative M", func(i *VectorIndex) { i.M = -1 }},
	}

	idx := testIndex()
	if err := idx.Validate(); err != nil {
		t.Fatalf("valid index rejected: %v", err)
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			idx := testIndex()
			tc.mod(&idx)
			if err := idx.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestVectorIndex_String(t *testing.T) {
	idx := testIndex()
	s := idx.String()
	if !strings.HasPrefix(s, "FT.CREATE vecrud:idx:demo ON HASH") {
		t.Errorf("unexpected string: %s", s)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	for _, s := range []string{"idx", "vecrud:idx:demo", "a-b_c"} {
		if !IsValidIdentifier(s) {
			t.Errorf("%q must be valid", s)
		}
	}
	for _, s := range []string{"", "a b", "a*b", "ñ"} {
		if IsValidIdentifier(s) {
			t.Errorf("%q must be invalid", s)
		}
	}
}
