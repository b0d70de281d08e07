package vector

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/keeperhq/memorybank/internal/telemetry"
)

const (
	// defaultCacheMaxCost bounds the cache by the total number of
	// float32 values held across all cached vectors.
	defaultCacheMaxCost = 1 << 20

	defaultCacheCounters = 10_000
)

// CachingEmbedder wraps another Embedder with a ristretto cache keyed by
// the input text. Embedding the same text repeatedly (re-saved memories,
// repeated queries) then costs one upstream call.
type CachingEmbedder struct {
	inner   Embedder
	cache   *ristretto.Cache
	metrics *telemetry.Collector
}

// CacheConfig holds sizing options for the embedding cache.
type CacheConfig struct {
	// MaxCost bounds the cache size, measured in cached vector elements.
	MaxCost int64

	// Metrics receives hit/miss counters. May be nil.
	Metrics *telemetry.Collector
}

// NewCachingEmbedder wraps inner with an embedding cache.
func NewCachingEmbedder(inner Embedder, cfg CacheConfig) (*CachingEmbedder, error) {
	maxCost := cfg.MaxCost
	if maxCost <= 0 {
		maxCost = defaultCacheMaxCost
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: defaultCacheCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}

	return &CachingEmbedder{
		inner:   inner,
		cache:   cache,
		metrics: cfg.Metrics,
	}, nil
}

// Initialize initializes the wrapped embedder.
func (e *CachingEmbedder) Initialize() error {
	return e.inner.Initialize()
}

// CreateEmbedding returns a cached vector when available, otherwise
// delegates to the wrapped embedder and caches the result.
func (e *CachingEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		if embedding, ok := cached.([]float32); ok {
			e.metrics.Count(telemetry.MetricEmbedderCacheHits, 1)
			return embedding, nil
		}
	}
	e.metrics.Count(telemetry.MetricEmbedderCacheMiss, 1)
	e.metrics.Count(telemetry.MetricEmbedderCalls, 1)

	start := time.Now()
	embedding, err := e.inner.CreateEmbedding(ctx, text)
	e.metrics.Time(telemetry.MetricEmbedderLatency, time.Since(start))
	if err != nil {
		e.metrics.Count(telemetry.MetricEmbedderErrors, 1)
		return nil, err
	}
	if len(embedding) > 0 {
		e.cache.Set(text, embedding, int64(len(embedding)))
	}
	return embedding, nil
}

// Wait blocks until pending cache writes are applied. Intended for tests.
func (e *CachingEmbedder) Wait() {
	e.cache.Wait()
}

// Close releases the cache resources.
func (e *CachingEmbedder) Close() {
	e.cache.Close()
}
