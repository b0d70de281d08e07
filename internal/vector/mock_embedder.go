package vector

import (
	"context"
	"hash/fnv"
	"math"
)

// MockEmbedder produces deterministic pseudo-embeddings for tests and
// local development. The same text always yields the same unit vector.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder creates a MockEmbedder with the given vector size.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 128
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Initialize implements Embedder. The mock needs no setup.
func (e *MockEmbedder) Initialize() error {
	return nil
}

// Dimensions returns the vector size this embedder produces.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// CreateEmbedding derives a normalized vector from an FNV-1a hash of the
// text, one hash round per dimension.
func (e *MockEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	embedding := make([]float32, e.dimensions)

	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	for i := range embedding {
		// xorshift step so each dimension gets its own value.
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		embedding[i] = float32(seed%2000)/1000.0 - 1.0
	}

	normalize(embedding)
	return embedding, nil
}

// normalize scales the vector to unit length in place. Zero vectors are
// left untouched.
func normalize(embedding []float32) {
	var sumSquares float64
	for _, v := range embedding {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return
	}
	magnitude := float32(math.Sqrt(sumSquares))
	for i := range embedding {
		embedding[i] /= magnitude
	}
}
