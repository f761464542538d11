// Package middleware contains the HTTP middleware chain: panic
// recovery, request ID propagation, structured request logging, and
// Prometheus instrumentation.
package middleware
