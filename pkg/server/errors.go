package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/ganymede/pkg/assets"
	"mercator-hq/ganymede/pkg/environment"
	"mercator-hq/ganymede/pkg/gitws"
)

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// springNotFound writes the Spring-style 404 JSON body.
func springNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"status":    http.StatusNotFound,
		"error":     "Not Found",
		"path":      r.URL.Path,
	})
}

// writeError maps a component error to its HTTP response. Not-found
// conditions produce the Spring-style 404 body; malformed paths produce
// 400; Git failures and timeouts produce 502.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, environment.ErrUnknownEnv),
		errors.Is(err, gitws.ErrLabelNotFound),
		errors.Is(err, gitws.ErrRefMissing),
		errors.Is(err, gitws.ErrBlobNotFound):
		springNotFound(w, r)
	case errors.Is(err, assets.ErrBadRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.ErrorContext(r.Context(), "git layer failure",
			"path", r.URL.Path, "error", err)
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
	}
}
