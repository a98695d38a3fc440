package domain

// VectorConfig holds vectorization settings shared by the embedder and the collection.
type VectorConfig struct {
	Model          string
	Dimensions     int
	DistanceMetric string
}

// DefaultVectorConfig returns the defaults for sentence-transformers/all-MiniLM-L6-v2.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "sentence-transformers/all-MiniLM-L6-v2",
		Dimensions:     384,
		DistanceMetric: "cosine",
	}
}
