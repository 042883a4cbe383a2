// Package metrics records per-run counters for prbot with the Prometheus
// client library.
//
// A run is a one-shot CI job, so nothing is served over HTTP. When a textfile
// path is configured the registry is written out at the end of the run in
// the node-exporter textfile format.
package metrics
