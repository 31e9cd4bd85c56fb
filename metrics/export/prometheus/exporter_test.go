package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authkit "github.com/openthedoor/authkit"
)

type fakeSource struct {
	snapshot authkit.MetricsSnapshot
}

func (f fakeSource) Snapshot() authkit.MetricsSnapshot { return f.snapshot }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: authkit.MetricsSnapshot{
			Counters:   map[authkit.MetricID]uint64{},
			Histograms: map[authkit.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderCounterAndHistogram(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: authkit.MetricsSnapshot{
			Counters: map[authkit.MetricID]uint64{
				authkit.MetricLoginSuccess:    7,
				authkit.MetricValidateRevoked: 2,
			},
			Histograms: map[authkit.MetricID][]uint64{
				authkit.MetricValidateLatency: {1, 1, 0, 0, 0, 0, 0, 1},
			},
		},
	})

	out := exp.Render()
	for _, want := range []string{
		"# TYPE authkit_login_success_total counter",
		"authkit_login_success_total 7",
		"authkit_validate_revoked_total 2",
		"# TYPE authkit_validate_latency_seconds histogram",
		`authkit_validate_latency_seconds_bucket{le="0.005"} 1`,
		`authkit_validate_latency_seconds_bucket{le="0.01"} 2`,
		`authkit_validate_latency_seconds_bucket{le="+Inf"} 3`,
		"authkit_validate_latency_seconds_count 3",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestHandler(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: authkit.MetricsSnapshot{
			Counters: map[authkit.MetricID]uint64{authkit.MetricLogout: 1},
		},
	})

	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "authkit_logout_total 1") {
		t.Fatalf("missing counter in body:\n%s", rec.Body.String())
	}
}
