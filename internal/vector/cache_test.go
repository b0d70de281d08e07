package vector

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/keeperhq/memorybank/internal/telemetry"
)

// countingEmbedder records how many times it is invoked.
type countingEmbedder struct {
	calls int
	fail  bool
}

func (e *countingEmbedder) Initialize() error { return nil }

func (e *countingEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.fail {
		return nil, errors.New("upstream unavailable")
	}
	return []float32{float32(len(text)), 1, 2}, nil
}

func TestCachingEmbedderHit(t *testing.T) {
	inner := &countingEmbedder{}
	metrics := telemetry.NewCollector()
	emb, err := NewCachingEmbedder(inner, CacheConfig{Metrics: metrics})
	if err != nil {
		t.Fatalf("NewCachingEmbedder() error: %v", err)
	}
	defer emb.Close()

	first, err := emb.CreateEmbedding(t.Context(), "repeated text")
	if err != nil {
		t.Fatalf("CreateEmbedding() error: %v", err)
	}
	emb.Wait()

	second, err := emb.CreateEmbedding(t.Context(), "repeated text")
	if err != nil {
		t.Fatalf("CreateEmbedding() error: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("expected one upstream call, got %d", inner.calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected cached vector to match original")
	}
	if metrics.Counter(telemetry.MetricEmbedderCacheHits) != 1 {
		t.Errorf("expected one cache hit, got %d", metrics.Counter(telemetry.MetricEmbedderCacheHits))
	}
	if metrics.Counter(telemetry.MetricEmbedderCacheMiss) != 1 {
		t.Errorf("expected one cache miss, got %d", metrics.Counter(telemetry.MetricEmbedderCacheMiss))
	}
}

func TestCachingEmbedderErrorNotCached(t *testing.T) {
	inner := &countingEmbedder{fail: true}
	emb, err := NewCachingEmbedder(inner, CacheConfig{})
	if err != nil {
		t.Fatalf("NewCachingEmbedder() error: %v", err)
	}
	defer emb.Close()

	if _, err := emb.CreateEmbedding(t.Context(), "failing text"); err == nil {
		t.Fatalf("expected error from failing upstream")
	}
	emb.Wait()

	// The failure must not be cached: a second call hits upstream again.
	if _, err := emb.CreateEmbedding(t.Context(), "failing text"); err == nil {
		t.Fatalf("expected error from failing upstream")
	}
	if inner.calls != 2 {
		t.Errorf("expected two upstream calls, got %d", inner.calls)
	}
}
