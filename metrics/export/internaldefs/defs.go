package internaldefs

import (
	authkit "github.com/openthedoor/authkit"
)

// CounterDef names one engine counter for exposition.
type CounterDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exposition.
type HistogramDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: authkit.MetricLoginSuccess, Name: "authkit_login_success_total", Help: "Logins that issued a token pair."},
	{ID: authkit.MetricLoginFailure, Name: "authkit_login_failure_total", Help: "Rejected login attempts."},
	{ID: authkit.MetricRefreshSuccess, Name: "authkit_refresh_success_total", Help: "Refresh calls that minted an access token."},
	{ID: authkit.MetricRefreshFailure, Name: "authkit_refresh_failure_total", Help: "Rejected refresh tokens."},
	{ID: authkit.MetricValidateSuccess, Name: "authkit_validate_success_total", Help: "Accepted access tokens."},
	{ID: authkit.MetricValidateRevoked, Name: "authkit_validate_revoked_total", Help: "Well-signed tokens unknown to the session registry."},
	{ID: authkit.MetricValidateFailure, Name: "authkit_validate_failure_total", Help: "Tokens rejected before the registry check."},
	{ID: authkit.MetricLogout, Name: "authkit_logout_total", Help: "Logout operations."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authkit.MetricValidateLatency, Name: "authkit_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, Prometheus le
// label form.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are the same bounds in instrument-name-safe form.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// Prometheus histograms use.
func CumulativeBuckets(nonCumulative [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range nonCumulative {
		running += v
		out[i] = running
	}
	return out
}
