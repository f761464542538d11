package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mercator-hq/ganymede/pkg/auth"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/environment"
	"mercator-hq/ganymede/pkg/gitws"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// newFixtureRepo commits the standard test files on main and a feature
// branch, and returns the source directory.
func newFixtureRepo(t *testing.T) string {
	t.Helper()

	srcDir := t.TempDir()
	repo, err := gogit.PlainInitWithOptions(srcDir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName("main"),
		},
	})
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	commit := func(files map[string]string, msg string) {
		t.Helper()
		for name, content := range files {
			path := filepath.Join(srcDir, name)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				t.Fatalf("failed to create dir: %v", err)
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("failed to write %s: %v", name, err)
			}
			if _, err := worktree.Add(name); err != nil {
				t.Fatalf("failed to add %s: %v", name, err)
			}
		}
		if _, err := worktree.Commit(msg, &gogit.CommitOptions{
			Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
		}); err != nil {
			t.Fatalf("failed to commit: %v", err)
		}
	}

	commit(map[string]string{
		"config-client-dev.yml": "demo:\n  number: 42\n",
		"application.yml":       "msg: \"Hello {{ NAME }}\"\n",
	}, "initial commit")

	if err := worktree.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature"),
		Create: true,
	}); err != nil {
		t.Fatalf("failed to create feature branch: %v", err)
	}
	commit(map[string]string{"feature.yml": "feature: true\n"}, "feature commit")
	if err := worktree.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("main"),
	}); err != nil {
		t.Fatalf("failed to checkout main: %v", err)
	}

	return srcDir
}

type serverOptions struct {
	basePath string
	acl      config.ClientAuthConfig
	basic    *auth.BasicCredentials
	envMap   map[string]string
}

// newTestServer assembles a full server over one environment "test"
// backed by a fresh fixture repo.
func newTestServer(t *testing.T, opts serverOptions) *Server {
	t.Helper()

	srcDir := newFixtureRepo(t)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{BindAddr: "127.0.0.1:0", BasePath: opts.basePath},
		Environments: map[string]config.EnvironmentConfig{
			"test": {Git: config.GitConfig{
				RepoURL:             srcDir,
				Branch:              "main",
				Branches:            []string{"main", "feature"},
				Workdir:             filepath.Join(t.TempDir(), "ws"),
				RefreshIntervalSecs: 30,
			}},
		},
		ClientAuth: opts.acl,
	}
	config.ApplyDefaults(cfg)

	manager := gitws.NewManager()
	registry := environment.NewRegistry()
	envCfg := cfg.Environments["test"]
	registry.Add(&environment.Environment{
		Name:      "test",
		Workspace: manager.Add("test", &envCfg.Git),
		EnvMap:    opts.envMap,
	})
	if err := manager.Init(context.Background()); err != nil {
		t.Fatalf("failed to init manager: %v", err)
	}

	gate := auth.NewGate(opts.basic, cfg.ClientAuth)
	return NewServer(cfg, registry, manager, gate, metrics.NewCollector(nil))
}

func get(t *testing.T, handler http.Handler, target string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSpringEndpoint(t *testing.T) {
	srv := newTestServer(t, serverOptions{envMap: map[string]string{"NAME": "world"}})
	handler := srv.Handler()

	rec := get(t, handler, "/test/config-client/dev", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		Name            string   `json:"name"`
		Profiles        []string `json:"profiles"`
		Label           *string  `json:"label"`
		Version         string   `json:"version"`
		State           string   `json:"state"`
		PropertySources []struct {
			Name   string         `json:"name"`
			Source map[string]any `json:"source"`
		} `json:"propertySources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if resp.Name != "config-client" {
		t.Errorf("name = %q", resp.Name)
	}
	if len(resp.Profiles) != 1 || resp.Profiles[0] != "dev" {
		t.Errorf("profiles = %v", resp.Profiles)
	}
	if resp.Label != nil {
		t.Errorf("label = %v, want null", *resp.Label)
	}
	if len(resp.Version) != 40 {
		t.Errorf("version = %q, want full commit hash", resp.Version)
	}
	if len(resp.PropertySources) != 2 {
		t.Fatalf("propertySources = %d, want config-client-dev.yml and application.yml", len(resp.PropertySources))
	}
	if v, ok := resp.PropertySources[0].Source["demo.number"]; !ok || v != float64(42) {
		t.Errorf("demo.number = %v, want 42 as JSON number", v)
	}
	if v := resp.PropertySources[1].Source["msg"]; v != "Hello world" {
		t.Errorf("msg = %v, want templated value", v)
	}
}

func TestSpringEndpointWithLabel(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	handler := srv.Handler()

	rec := get(t, handler, "/test/feature-app/default/feature", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Label   *string `json:"label"`
		Version string  `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Label == nil || *resp.Label != "feature" {
		t.Errorf("label = %v, want feature", resp.Label)
	}
	if resp.Version == "" {
		t.Error("version empty, want feature commit")
	}
}

func TestSpringUnknownLabelIsEmpty200(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	handler := srv.Handler()

	// "develop" is outside the branch whitelist, so the label is
	// rejected and the response degrades to empty.
	rec := get(t, handler, "/test/config-client/dev/develop", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Version         string `json:"version"`
		PropertySources []any  `json:"propertySources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Version != "" || len(resp.PropertySources) != 0 {
		t.Errorf("response = %s, want empty", rec.Body)
	}
}

func TestSpringUnknownEnv404(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	rec := get(t, srv.Handler(), "/nope/app/default", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body struct {
		Status int    `json:"status"`
		Error  string `json:"error"`
		Path   string `json:"path"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse 404 body: %v", err)
	}
	if body.Status != 404 || body.Error != "Not Found" || body.Path != "/nope/app/default" {
		t.Errorf("body = %+v", body)
	}
}

func TestEnvEndpoints(t *testing.T) {
	srv := newTestServer(t, serverOptions{envMap: map[string]string{
		"B_KEY": `with "quotes" and \slashes\`,
		"A_KEY": "plain",
	}})
	handler := srv.Handler()

	rec := get(t, handler, "/test/env", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var envMap map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &envMap); err != nil {
		t.Fatalf("failed to parse env map: %v", err)
	}
	if envMap["A_KEY"] != "plain" {
		t.Errorf("env map = %v", envMap)
	}

	rec = get(t, handler, "/test/env/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := "export A_KEY=\"plain\"\n" +
		"export B_KEY=\"with \\\"quotes\\\" and \\\\slashes\\\\\"\n"
	if rec.Body.String() != want {
		t.Errorf("export = %q, want %q", rec.Body.String(), want)
	}
}

func TestAssetEndpoints(t *testing.T) {
	srv := newTestServer(t, serverOptions{envMap: map[string]string{"NAME": "world"}})
	handler := srv.Handler()

	rec := get(t, handler, "/test/assets", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listing map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("failed to parse listing: %v", err)
	}
	if len(listing["files"]) == 0 {
		t.Errorf("listing = %v, want files", listing)
	}

	rec = get(t, handler, "/test/assets/application.yml", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/yaml" {
		t.Errorf("content type = %q, want text/yaml", got)
	}
	if rec.Body.String() != "msg: \"Hello world\"\n" {
		t.Errorf("body = %q", rec.Body.String())
	}

	// Explicit label segment selects the branch.
	rec = get(t, handler, "/test/assets/feature/feature.yml", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("labeled get status = %d, body = %s", rec.Code, rec.Body)
	}
	if rec.Body.String() != "feature: true\n" {
		t.Errorf("labeled body = %q", rec.Body.String())
	}

	rec = get(t, handler, "/test/assets/missing.yml", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing file status = %d, want 404", rec.Code)
	}
}

func TestAssetPathTraversalRejected(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	// Escaped dots decode into a literal ".." segment; the guard ahead
	// of the mux rejects it before ServeMux can clean and redirect it.
	rec := get(t, srv.Handler(), "/test/assets/%2e%2e/secret", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	// Auth enabled to prove health bypasses the gate.
	srv := newTestServer(t, serverOptions{
		basic: &auth.BasicCredentials{Username: "u", Password: "p"},
	})
	handler := srv.Handler()

	rec := get(t, handler, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}

	rec = get(t, handler, "/healthz/env", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz/env status = %d", rec.Code)
	}
	var body struct {
		Environments []struct {
			Env    string `json:"env"`
			Status string `json:"status"`
			Head   string `json:"head"`
		} `json:"environments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse health body: %v", err)
	}
	if len(body.Environments) != 1 || body.Environments[0].Status != "ok" {
		t.Errorf("health = %+v", body)
	}

	rec = get(t, handler, "/healthz/env/test", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz/env/test status = %d", rec.Code)
	}
	rec = get(t, handler, "/healthz/env/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown env health status = %d, want 404", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	rec := get(t, srv.Handler(), "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d", rec.Code)
	}
}

func TestBasicAuthFlow(t *testing.T) {
	srv := newTestServer(t, serverOptions{
		basic: &auth.BasicCredentials{Username: "u", Password: "p"},
	})
	handler := srv.Handler()

	rec := get(t, handler, "/test/config-client/dev", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); !strings.HasPrefix(got, "Basic") {
		t.Errorf("WWW-Authenticate = %q", got)
	}

	rec = get(t, handler, "/test/config-client/dev", func(r *http.Request) {
		r.SetBasicAuth("u", "p")
	})
	if rec.Code != http.StatusOK {
		t.Errorf("authorized status = %d, want 200", rec.Code)
	}
}

func TestClientACLFlow(t *testing.T) {
	acl := config.ClientAuthConfig{
		Enabled:    true,
		HeaderName: "x-client-id",
		Clients: []config.Client{{
			ID:           "ci",
			Environments: []string{"test"},
			Scopes:       []string{"config:read"},
		}},
	}
	srv := newTestServer(t, serverOptions{acl: acl})
	handler := srv.Handler()

	withID := func(r *http.Request) { r.Header.Set("x-client-id", "ci") }

	rec := get(t, handler, "/test/config-client/dev", withID)
	if rec.Code != http.StatusOK {
		t.Errorf("config status = %d, want 200", rec.Code)
	}
	// Same client lacks env:read.
	rec = get(t, handler, "/test/env", withID)
	if rec.Code != http.StatusForbidden {
		t.Errorf("env status = %d, want 403", rec.Code)
	}
	rec = get(t, handler, "/test/config-client/dev", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing header status = %d, want 401", rec.Code)
	}
}

func TestBasePathPrefixing(t *testing.T) {
	srv := newTestServer(t, serverOptions{basePath: "/config"})
	handler := srv.Handler()

	rec := get(t, handler, "/config/test/config-client/dev", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("prefixed status = %d, want 200", rec.Code)
	}
	rec = get(t, handler, "/test/config-client/dev", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unprefixed status = %d, want 404", rec.Code)
	}
}

func TestUIEndpoint(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	rec := get(t, srv.Handler(), "/ui", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ui status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("content type = %q", got)
	}
	body := rec.Body.String()
	if strings.Contains(body, "__META_JSON__") {
		t.Error("meta placeholder not replaced")
	}
	if !strings.Contains(body, `"base_path"`) {
		t.Error("meta json missing from page")
	}
}
