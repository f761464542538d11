package middleware

import (
	"net/http"
	"time"

	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// Metrics records request counts and latencies per route pattern. The
// pattern is looked up on the mux before dispatch (not taken from the
// raw path) to keep metric cardinality bounded.
func Metrics(collector *metrics.Collector, mux *http.ServeMux) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			_, route := mux.Handler(r)
			if route == "" {
				route = "unmatched"
			}
			collector.ObserveRequest(r.Method, route, rw.statusCode, time.Since(start))
		})
	}
}
