// Package vector provides text embedding and vector utilities for the
// memorybank service.
package vector

import "context"

const (
	// DefaultEmbeddingDimensions is the vector size used when no
	// dimension is configured. 1536 matches common hosted models.
	DefaultEmbeddingDimensions = 1536
)

// Embedder converts text into a fixed-length vector representation.
// Implementations must return vectors of a consistent length; a
// zero-length vector signals that embedding is unavailable.
type Embedder interface {
	// CreateEmbedding converts text into a vector representation.
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)

	// Initialize sets up the embedder with any required configuration.
	Initialize() error
}
