package telemetry

import (
	"strings"
	"testing"
	"time"
)

func TestCounters(t *testing.T) {
	c := NewCollector()

	c.Count(MetricStoreAppends, 1)
	c.Count(MetricStoreAppends, 2)
	if got := c.Counter(MetricStoreAppends); got != 3 {
		t.Errorf("expected counter 3, got %d", got)
	}
	if got := c.Counter("never.touched"); got != 0 {
		t.Errorf("expected untouched counter to be 0, got %d", got)
	}
}

func TestGauges(t *testing.T) {
	c := NewCollector()

	c.Gauge(MetricEmbedderDimensions, 384)
	c.Gauge(MetricEmbedderDimensions, 768)
	if got := c.GaugeValue(MetricEmbedderDimensions); got != 768 {
		t.Errorf("expected gauge to hold last value, got %v", got)
	}
}

func TestTimers(t *testing.T) {
	c := NewCollector()

	c.Time(MetricStoreSearchLatency, 10*time.Millisecond)
	c.Time(MetricStoreSearchLatency, 30*time.Millisecond)

	if got := c.TimerAverage(MetricStoreSearchLatency); got != 20*time.Millisecond {
		t.Errorf("expected average 20ms, got %v", got)
	}
	if got := c.TimerP95(MetricStoreSearchLatency); got != 30*time.Millisecond {
		t.Errorf("expected p95 30ms, got %v", got)
	}
	if got := c.TimerAverage("empty.timer"); got != 0 {
		t.Errorf("expected empty timer average 0, got %v", got)
	}
}

func TestTimerSampleBound(t *testing.T) {
	c := NewCollector()

	for i := 0; i < maxTimerSamples+50; i++ {
		c.Time(MetricStoreAppendLatency, time.Millisecond)
	}

	c.mu.RLock()
	n := len(c.timers[MetricStoreAppendLatency])
	c.mu.RUnlock()
	if n != maxTimerSamples {
		t.Errorf("expected samples bounded at %d, got %d", maxTimerSamples, n)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector

	// All operations must be no-ops, not panics.
	c.Count(MetricStoreAppends, 1)
	c.Gauge(MetricEmbedderDimensions, 1)
	c.Time(MetricStoreSearchLatency, time.Second)
	c.Reset()

	if c.Counter(MetricStoreAppends) != 0 {
		t.Errorf("nil collector should report zero counters")
	}
	if c.Report() != "" {
		t.Errorf("nil collector should produce an empty report")
	}
}

func TestReportAndReset(t *testing.T) {
	c := NewCollector()
	c.Count(MetricStoreSearches, 5)
	c.Gauge(MetricEmbedderDimensions, 128)
	c.Time(MetricEmbedderLatency, time.Millisecond)

	report := c.Report()
	for _, want := range []string{MetricStoreSearches, MetricEmbedderDimensions, MetricEmbedderLatency} {
		if !strings.Contains(report, want) {
			t.Errorf("expected report to mention %q:\n%s", want, report)
		}
	}

	c.Reset()
	if c.Counter(MetricStoreSearches) != 0 {
		t.Errorf("expected counters cleared after reset")
	}
}
