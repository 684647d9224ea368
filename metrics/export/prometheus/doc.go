// Package prometheus renders otpauth engine metrics in the Prometheus text
// exposition format.
//
// [NewExporter] takes an [otpauth.Engine] and exposes an [http.Handler] for
// mounting at /metrics. Counter names are prefixed otpauth_ and end in
// _total; the single histogram is otpauth_login_latency_seconds. Nothing is
// registered in a global registry.
package prometheus
