package otel

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	authkit "github.com/openthedoor/authkit"
)

type fakeSource struct {
	snapshot authkit.MetricsSnapshot
}

func (f fakeSource) Snapshot() authkit.MetricsSnapshot { return f.snapshot }

func TestExporterRegistersAndCollects(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("authkit-test")

	src := fakeSource{snapshot: authkit.MetricsSnapshot{
		Counters: map[authkit.MetricID]uint64{
			authkit.MetricLoginSuccess: 3,
		},
		Histograms: map[authkit.MetricID][]uint64{
			authkit.MetricValidateLatency: {1, 1, 1, 1, 1, 1, 1, 1},
		},
	}}

	exp, err := NewExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	defer exp.Close()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	values := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					values[m.Name] = dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					values[m.Name] = dp.Value
				}
			}
		}
	}

	if got := values["authkit_login_success_total"]; got != 3 {
		t.Fatalf("expected login counter 3, got %d", got)
	}
	if got := values["authkit_validate_latency_seconds_count"]; got != 8 {
		t.Fatalf("expected histogram count 8, got %d", got)
	}
	if got := values["authkit_validate_latency_seconds_bucket_le_0_01"]; got != 2 {
		t.Fatalf("expected cumulative second bucket 2, got %d", got)
	}
}

func TestExporterNilArguments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("authkit-test")

	if _, err := NewExporterFromSource(nil, fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
	if _, err := NewExporterFromSource(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
}

func TestExporterCloseIsIdempotent(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("authkit-test")

	exp, err := NewExporterFromSource(meter, fakeSource{})
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	if err := exp.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	var nilExp *Exporter
	if err := nilExp.Close(); err != nil {
		t.Fatalf("nil Close failed: %v", err)
	}
}
