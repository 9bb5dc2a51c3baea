// Package prometheus provides Prometheus collectors for goCaptcha metrics.
//
// [NewPrometheusExporter] accepts a [goCaptcha.Engine] and exposes an [http.Handler]
// that renders all goCaptcha counters and histograms in Prometheus text exposition format.
// Counter names are prefixed gocaptcha_*_total; the single histogram is
// gocaptcha_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
