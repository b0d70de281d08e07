// Package telemetry provides in-process metrics collection for
// monitoring the memorybank service.
package telemetry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Metric names for the long-term memory store.
const (
	MetricStoreInitAttempts = "memstore.init.attempts"
	MetricStoreInitFailures = "memstore.init.failures"

	MetricStoreAppends       = "memstore.appends"
	MetricStoreAppendErrors  = "memstore.append_errors"
	MetricStoreSearches      = "memstore.searches"
	MetricStoreSearchErrors  = "memstore.search_errors"
	MetricStoreDedupDropped  = "memstore.dedup.dropped"
	MetricStoreSearchLatency = "memstore.search.latency"
	MetricStoreAppendLatency = "memstore.append.latency"
)

// Metric names for the embedding layer.
const (
	MetricEmbedderCalls      = "embedder.calls"
	MetricEmbedderErrors     = "embedder.errors"
	MetricEmbedderCacheHits  = "embedder.cache.hits"
	MetricEmbedderCacheMiss  = "embedder.cache.misses"
	MetricEmbedderLatency    = "embedder.latency"
	MetricEmbedderDimensions = "embedder.dimensions"
)

// maxTimerSamples bounds per-timer memory.
const maxTimerSamples = 100

// Collector is a thread-safe sink for counters, gauges, and timers.
// A nil *Collector is valid and drops everything, so callers can leave
// telemetry unwired.
type Collector struct {
	counters map[string]int64
	gauges   map[string]float64
	timers   map[string][]time.Duration
	mu       sync.RWMutex
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timers:   make(map[string][]time.Duration),
	}
}

// Count increments the named counter by n.
func (c *Collector) Count(name string, n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name] += n
}

// Gauge sets the named gauge.
func (c *Collector) Gauge(name string, value float64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[name] = value
}

// Time records a duration sample for the named timer, keeping at most
// maxTimerSamples recent samples.
func (c *Collector) Time(name string, d time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	samples := append(c.timers[name], d)
	if len(samples) > maxTimerSamples {
		samples = samples[len(samples)-maxTimerSamples:]
	}
	c.timers[name] = samples
}

// Counter returns the current value of a counter.
func (c *Collector) Counter(name string) int64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counters[name]
}

// GaugeValue returns the current value of a gauge.
func (c *Collector) GaugeValue(name string) float64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gauges[name]
}

// TimerAverage returns the mean of the recorded samples for a timer.
func (c *Collector) TimerAverage(name string) time.Duration {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	samples := c.timers[name]
	if len(samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range samples {
		total += d
	}
	return total / time.Duration(len(samples))
}

// TimerP95 returns the 95th percentile of the recorded samples.
func (c *Collector) TimerP95(name string) time.Duration {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	samples := c.timers[name]
	if len(samples) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(float64(len(sorted)) * 0.95)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Report renders all collected metrics as a human-readable block.
func (c *Collector) Report() string {
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var b strings.Builder
	b.WriteString("Metrics Report\n")
	b.WriteString("==============\n")

	b.WriteString("Counters:\n")
	for _, name := range sortedKeys(c.counters) {
		fmt.Fprintf(&b, "  %s: %d\n", name, c.counters[name])
	}

	b.WriteString("Gauges:\n")
	for _, name := range sortedKeys(c.gauges) {
		fmt.Fprintf(&b, "  %s: %.2f\n", name, c.gauges[name])
	}

	b.WriteString("Timers:\n")
	for _, name := range sortedKeys(c.timers) {
		samples := c.timers[name]
		var total time.Duration
		for _, d := range samples {
			total += d
		}
		avg := total / time.Duration(len(samples))
		fmt.Fprintf(&b, "  %s: avg=%v count=%d\n", name, avg, len(samples))
	}

	return b.String()
}

// Reset clears everything collected so far.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters = make(map[string]int64)
	c.gauges = make(map[string]float64)
	c.timers = make(map[string][]time.Duration)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
