package goAuthClient

import (
	"testing"
	"time"
)

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricLoginSuccess)
	}
}

func BenchmarkMetricsIncDisabled(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricLoginSuccess)
	}
}

// Mirrors a busy SSR process: many goroutines recording login outcomes into
// one shared Metrics.
var loginOutcomeIDs = [...]MetricID{
	MetricLoginSuccess,
	MetricLoginFailure,
	MetricResponseTokens,
	MetricResponseMfaRequired,
	MetricResponseRedirect,
	MetricRefreshSuccess,
	MetricRefreshFailure,
	MetricLogout,
}

func BenchmarkMetricsIncOutcomesParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			m.Inc(loginOutcomeIDs[idx])
			idx = (idx + 1) % len(loginOutcomeIDs)
		}
	})
}

func BenchmarkMetricsObserveRequestLatencyParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	latencies := [...]time.Duration{
		8 * time.Millisecond,
		40 * time.Millisecond,
		180 * time.Millisecond,
		900 * time.Millisecond,
	}
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			m.Observe(MetricRequestLatency, latencies[idx])
			idx = (idx + 1) % len(latencies)
		}
	})
}

func BenchmarkMetricsSnapshot(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	for _, id := range loginOutcomeIDs {
		m.Inc(id)
	}
	m.Observe(MetricRequestLatency, 30*time.Millisecond)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = m.Snapshot()
	}
}
