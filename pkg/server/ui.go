package server

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"mercator-hq/ganymede/pkg/auth"
)

//go:embed ui.html
var uiTemplate string

// uiEnvMeta is the per-environment metadata injected into the UI page.
type uiEnvMeta struct {
	Name           string   `json:"name"`
	RepoURL        string   `json:"repo_url"`
	Branch         string   `json:"branch"`
	Branches       []string `json:"branches"`
	Subpath        string   `json:"subpath"`
	Workdir        string   `json:"workdir"`
	LastCommit     string   `json:"last_commit"`
	LastCommitDate string   `json:"last_commit_date"`
}

// uiMeta is the page bootstrap data.
type uiMeta struct {
	BasePath     string      `json:"base_path"`
	Environments []uiEnvMeta `json:"environments"`
	AuthEnabled  bool        `json:"auth_enabled"`
}

// handleUI serves the embedded single-page UI with current environment
// metadata injected. The page itself only consumes the public
// endpoints.
func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, "", auth.ScopeUI) {
		return
	}

	meta := uiMeta{
		BasePath:     normalizeBasePath(s.cfg.HTTP.BasePath),
		Environments: []uiEnvMeta{},
		AuthEnabled:  s.gate.BasicEnabled(),
	}

	for _, name := range s.registry.Names() {
		env, err := s.registry.Lookup(name)
		if err != nil {
			continue
		}
		cfg := env.Workspace.Config()
		entry := uiEnvMeta{
			Name:     name,
			RepoURL:  cfg.RepoURL,
			Branch:   cfg.Branch,
			Branches: cfg.Branches,
			Subpath:  cfg.Subpath,
			Workdir:  cfg.Workdir,
		}
		if commit, err := env.Workspace.Resolve(""); err == nil {
			entry.LastCommit = commit
			if date, err := env.Workspace.CommitDate(commit); err == nil {
				entry.LastCommitDate = date.UTC().Format(time.RFC3339)
			}
		}
		meta.Environments = append(meta.Environments, entry)
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(strings.Replace(uiTemplate, "__META_JSON__", string(metaJSON), 1)))
}
