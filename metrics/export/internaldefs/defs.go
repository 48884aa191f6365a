package internaldefs

import (
	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   goAuthClient.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   goAuthClient.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in output order.
var CounterDefs = []CounterDef{
	{ID: goAuthClient.MetricLoginSuccess, Name: "goauthclient_login_success_total", Help: "Login requests accepted by the API."},
	{ID: goAuthClient.MetricLoginFailure, Name: "goauthclient_login_failure_total", Help: "Login requests that failed or were rejected."},
	{ID: goAuthClient.MetricSignupSuccess, Name: "goauthclient_signup_success_total", Help: "Signup requests accepted by the API."},
	{ID: goAuthClient.MetricSignupFailure, Name: "goauthclient_signup_failure_total", Help: "Signup requests that failed or were rejected."},
	{ID: goAuthClient.MetricResponseTokens, Name: "goauthclient_response_tokens_total", Help: "Handled responses that issued tokens."},
	{ID: goAuthClient.MetricResponseMfaRequired, Name: "goauthclient_response_mfa_required_total", Help: "Handled responses that required a second factor."},
	{ID: goAuthClient.MetricResponsePkceRequired, Name: "goauthclient_response_pkce_required_total", Help: "Handled responses that carried an authorization code."},
	{ID: goAuthClient.MetricResponseRedirect, Name: "goauthclient_response_redirect_total", Help: "Handled responses that ended in a redirect."},
	{ID: goAuthClient.MetricRefreshSuccess, Name: "goauthclient_refresh_success_total", Help: "Successful token refreshes."},
	{ID: goAuthClient.MetricRefreshFailure, Name: "goauthclient_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: goAuthClient.MetricLogout, Name: "goauthclient_logout_total", Help: "Logout calls."},
	{ID: goAuthClient.MetricModeLookupSuccess, Name: "goauthclient_mode_lookup_success_total", Help: "Successful tenant mode lookups."},
	{ID: goAuthClient.MetricModeLookupFailure, Name: "goauthclient_mode_lookup_failure_total", Help: "Failed tenant mode lookups."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goAuthClient.MetricRequestLatency, Name: "goauthclient_request_latency_seconds", Help: "Authentication API round trip latency."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The last
// bucket is +Inf.
var HistogramUpperBounds = []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters that
// publish buckets as separate instruments.
var HistogramBoundSuffix = []string{
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed size array, zero filling.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
