package server

import (
	"net/http"
	"strings"

	"mercator-hq/ganymede/pkg/server/middleware"
)

// Handler builds the complete HTTP handler: routes, middleware chain,
// and base path prefixing.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health endpoints bypass the authorization gate.
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /healthz/env", s.handleHealthzEnvs)
	mux.HandleFunc("GET /healthz/env/{env}", s.handleHealthzEnv)
	if s.cfg.Telemetry.MetricsEnabled() {
		mux.Handle("GET /metrics", s.collector.Handler())
	}

	mux.HandleFunc("GET /ui", s.handleUI)
	mux.HandleFunc("GET /{env}/env", s.handleEnvJSON)
	mux.HandleFunc("GET /{env}/assets", s.handleAssetList)
	mux.HandleFunc("GET /{env}/assets/{path...}", s.handleAssetGet)

	// The Spring routes /{env}/{app}/{profile}[/{label}] would overlap
	// the asset wildcard in the ServeMux precedence rules, and
	// /{env}/env/export would conflict with /healthz/env/{env} (both
	// match /healthz/env/export), so these are dispatched by hand from
	// the env-scoped catch-all.
	mux.HandleFunc("GET /{env}/{rest...}", s.handleEnvScoped)
	mux.HandleFunc("/", s.handleNotFound)

	var handler http.Handler = mux
	if s.cfg.Telemetry.MetricsEnabled() {
		handler = middleware.Metrics(s.collector, mux)(handler)
	}
	handler = rejectParentSegments(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)

	if base := normalizeBasePath(s.cfg.HTTP.BasePath); base != "/" {
		outer := http.NewServeMux()
		outer.Handle(base+"/", http.StripPrefix(base, handler))
		outer.HandleFunc("/", s.handleNotFound)
		return rejectParentSegments(outer)
	}
	return handler
}

// handleEnvScoped dispatches /{env}/env/export, /{env}/{app}/{profile}
// and /{env}/{app}/{profile}/{label}.
func (s *Server) handleEnvScoped(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("rest") == "env/export" {
		s.handleEnvExport(w, r)
		return
	}
	env := r.PathValue("env")
	rest := strings.Trim(r.PathValue("rest"), "/")

	segments := strings.Split(rest, "/")
	switch len(segments) {
	case 2:
		s.serveSpring(w, r, env, segments[0], segments[1], "")
	case 3:
		s.serveSpring(w, r, env, segments[0], segments[1], segments[2])
	default:
		s.handleNotFound(w, r)
	}
}

// rejectParentSegments denies any request whose path contains a ".."
// segment before the mux can clean-and-redirect it. Escaped dots
// (%2e%2e) decode into the same segment and are caught here too.
func rejectParentSegments(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, segment := range strings.Split(r.URL.Path, "/") {
			if segment == ".." {
				http.Error(w, "parent '..' segments are not allowed", http.StatusBadRequest)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// normalizeBasePath trims surrounding whitespace and slashes and
// re-prefixes a single slash. "" and "/" both mean no prefix.
func normalizeBasePath(base string) string {
	trimmed := strings.Trim(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}
