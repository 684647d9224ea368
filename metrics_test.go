package otpauth

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)

	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if s := m.Snapshot(); len(s.Counters) != 0 {
		t.Fatalf("expected empty snapshot, got %v", s.Counters)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricOTPIssued)
	m.Inc(MetricOTPIssued)
	m.Inc(MetricOTPIssued)

	if got := m.Value(MetricOTPIssued); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricRefreshSuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricRefreshSuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		10 * time.Millisecond,
		40 * time.Millisecond,
		90 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		900 * time.Millisecond,
		2 * time.Second,
		5 * time.Second,
	}
	for _, d := range observations {
		m.Observe(MetricLoginLatency, d)
	}
	m.Observe(MetricOTPIssued, time.Second)

	s := m.Snapshot()
	buckets := s.Histograms[MetricLoginLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(buckets))
	}
	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d: expected 1, got %d", i, v)
		}
	}
	if _, ok := s.Counters[MetricLoginLatency]; ok {
		t.Fatal("latency metric must not appear as a counter")
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricLoginLatency, time.Second)
	if m.Enabled() {
		t.Fatal("nil metrics must report disabled")
	}
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
