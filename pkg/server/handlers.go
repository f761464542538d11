package server

import (
	"net/http"
	"slices"
	"sort"
	"strings"

	"mercator-hq/ganymede/pkg/auth"
	"mercator-hq/ganymede/pkg/environment"
)

// authorize runs the gate and writes the denial response when the
// request is rejected. env is empty for routes that are not env-scoped.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, env string, scope auth.Scope) bool {
	decision := s.gate.Authorize(r, env, scope)
	if decision.Allowed {
		return true
	}
	if decision.Challenge {
		w.Header().Set("WWW-Authenticate", `Basic realm="ganymede"`)
	}
	http.Error(w, http.StatusText(decision.Status), decision.Status)
	return false
}

// serveSpring handles the Spring Cloud Config endpoints. label is empty
// when the route carried none.
func (s *Server) serveSpring(w http.ResponseWriter, r *http.Request, env, app, profile, label string) {
	if !s.authorize(w, r, env, auth.ScopeConfigRead) {
		return
	}
	resp, err := s.engine.Resolve(r.Context(), env, app, profile, label)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleEnvJSON serves the effective environment map as a JSON object.
// Keys serialize alphabetically.
func (s *Server) handleEnvJSON(w http.ResponseWriter, r *http.Request) {
	envName := r.PathValue("env")
	if !s.authorize(w, r, envName, auth.ScopeEnvRead) {
		return
	}
	env, err := s.registry.Lookup(envName)
	if err != nil {
		springNotFound(w, r)
		return
	}
	envMap := env.EnvMap
	if envMap == nil {
		envMap = map[string]string{}
	}
	writeJSON(w, http.StatusOK, envMap)
}

// handleEnvExport serves the effective environment map as shell export
// lines, one per key, sorted alphabetically.
func (s *Server) handleEnvExport(w http.ResponseWriter, r *http.Request) {
	envName := r.PathValue("env")
	if !s.authorize(w, r, envName, auth.ScopeEnvRead) {
		return
	}
	env, err := s.registry.Lookup(envName)
	if err != nil {
		springNotFound(w, r)
		return
	}

	keys := make([]string, 0, len(env.EnvMap))
	for k := range env.EnvMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString("export ")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(shellEscape(env.EnvMap[k]))
		b.WriteString("\"\n")
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(b.String()))
}

// shellEscape escapes backslashes and double quotes for inclusion in a
// double-quoted shell word.
func shellEscape(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}

// handleAssetList serves the recursive file listing of the environment's
// subpath at the default branch.
func (s *Server) handleAssetList(w http.ResponseWriter, r *http.Request) {
	envName := r.PathValue("env")
	if !s.authorize(w, r, envName, auth.ScopeFilesRead) {
		return
	}
	files, err := s.assets.List(r.Context(), envName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"files": files})
}

// handleAssetGet serves one file, optionally at an explicit label. The
// label is recognized by its first path segment: when that segment names
// a configured branch the remainder is the file path, otherwise the
// whole wildcard is the file path. A file whose top-level directory
// collides with a branch name must be fetched via the explicit-label
// form.
func (s *Server) handleAssetGet(w http.ResponseWriter, r *http.Request) {
	envName := r.PathValue("env")
	if !s.authorize(w, r, envName, auth.ScopeFilesRead) {
		return
	}

	env, err := s.registry.Lookup(envName)
	if err != nil {
		springNotFound(w, r)
		return
	}

	label, path := splitAssetLabel(env, r.PathValue("path"))
	file, err := s.assets.Get(r.Context(), envName, label, path)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Write(file.Data)
}

// splitAssetLabel splits an asset wildcard into (label, path).
func splitAssetLabel(env *environment.Environment, raw string) (string, string) {
	first, rest, ok := strings.Cut(raw, "/")
	if !ok || rest == "" {
		return "", raw
	}
	cfg := env.Workspace.Config()
	allowed := cfg.Branches
	if len(allowed) == 0 {
		allowed = []string{cfg.Branch}
	}
	if slices.Contains(allowed, first) {
		return first, rest
	}
	return "", raw
}

// handleNotFound serves the Spring-style 404 for unmatched routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	springNotFound(w, r)
}
