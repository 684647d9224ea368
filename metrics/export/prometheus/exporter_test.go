package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrEthical07/otpauth"
)

type fakeSource struct {
	snapshot otpauth.MetricsSnapshot
	sent     uint64
	dropped  uint64
	failed   uint64
}

func (f fakeSource) MetricsSnapshot() otpauth.MetricsSnapshot { return f.snapshot }
func (f fakeSource) DeliverySent() uint64                     { return f.sent }
func (f fakeSource) DeliveryDropped() uint64                  { return f.dropped }
func (f fakeSource) DeliveryFailed() uint64                   { return f.failed }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: otpauth.MetricsSnapshot{
			Counters:   map[otpauth.MetricID]uint64{},
			Histograms: map[otpauth.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderIncludesCountersAndHistogram(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: otpauth.MetricsSnapshot{
			Counters: map[otpauth.MetricID]uint64{
				otpauth.MetricOTPIssued:    7,
				otpauth.MetricLoginSuccess: 3,
			},
			Histograms: map[otpauth.MetricID][]uint64{
				otpauth.MetricLoginLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		sent:    9,
		dropped: 2,
		failed:  1,
	})

	out := exp.Render()
	for _, want := range []string{
		"otpauth_otp_issued_total 7",
		"otpauth_login_success_total 3",
		"otpauth_otp_locked_total 0",
		`otpauth_login_latency_seconds_bucket{le="0.025"} 1`,
		`otpauth_login_latency_seconds_bucket{le="+Inf"} 36`,
		"otpauth_login_latency_seconds_count 36",
		"otpauth_delivery_sent_total 9",
		"otpauth_delivery_dropped_total 2",
		"otpauth_delivery_failed_total 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestRenderNilExporter(t *testing.T) {
	var nilExporter *Exporter
	if got := nilExporter.Render(); got != "" {
		t.Fatalf("nil exporter rendered %q", got)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: otpauth.MetricsSnapshot{
			Counters:   map[otpauth.MetricID]uint64{otpauth.MetricLoginSuccess: 1},
			Histograms: map[otpauth.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "otpauth_login_success_total 1") {
		t.Fatalf("unexpected body:\n%s", rec.Body.String())
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: otpauth.MetricsSnapshot{
			Counters: map[otpauth.MetricID]uint64{
				otpauth.MetricOTPIssued:        1000,
				otpauth.MetricOTPVerifyFailure: 40,
				otpauth.MetricLoginSuccess:     800,
				otpauth.MetricRefreshSuccess:   10,
			},
			Histograms: map[otpauth.MetricID][]uint64{
				otpauth.MetricLoginLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
