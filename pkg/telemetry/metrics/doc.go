// Package metrics provides the Prometheus collector for Ganymede: HTTP
// request counters and latency histograms, and Git refresh outcomes per
// environment.
package metrics
