package server

import (
	"net/http"
	"time"

	"mercator-hq/ganymede/pkg/gitws"
)

// envHealth is the health view of one environment's workspace.
type envHealth struct {
	Env         string    `json:"env"`
	Status      string    `json:"status"`
	Head        string    `json:"head"`
	LastRefresh time.Time `json:"last_refresh"`
	LastError   string    `json:"last_error,omitempty"`
}

func toEnvHealth(status gitws.RefreshStatus) envHealth {
	health := envHealth{
		Env:         status.Env,
		Status:      "ok",
		Head:        status.Head,
		LastRefresh: status.LastRefresh,
		LastError:   status.LastError,
	}
	if status.LastError != "" {
		health.Status = "degraded"
	}
	return health
}

// handleHealthz is the process liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// handleHealthzEnvs reports the refresh status of every environment.
func (s *Server) handleHealthzEnvs(w http.ResponseWriter, r *http.Request) {
	statuses := s.wsManager.Statuses()
	environments := make([]envHealth, 0, len(statuses))
	for _, status := range statuses {
		environments = append(environments, toEnvHealth(status))
	}
	writeJSON(w, http.StatusOK, map[string]any{"environments": environments})
}

// handleHealthzEnv reports the refresh status of one environment.
func (s *Server) handleHealthzEnv(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.wsManager.Get(r.PathValue("env"))
	if !ok {
		springNotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, toEnvHealth(ws.Status()))
}
