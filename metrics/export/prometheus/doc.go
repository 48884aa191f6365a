// Package prometheus exposes goAuthClient metrics as a Prometheus collector.
//
// [NewExporter] wraps a [goAuthClient.Client]. The result can be registered
// with any [prometheus.Registerer] or served directly through
// [Exporter.Handler]. Counter names are prefixed goauthclient_ and end in
// _total; the single histogram is goauthclient_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate client state.
package prometheus
