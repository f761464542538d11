package main

import (
	"testing"

	"mercator-hq/ganymede/pkg/config"
)

func TestEnvironmentsSingleInstance(t *testing.T) {
	cfg := &config.Config{
		Git: &config.GitConfig{RepoURL: "/srv/cfg.git", Branch: "main", Workdir: "/tmp/ws"},
	}

	envs := environments(cfg)
	if len(envs) != 1 {
		t.Fatalf("environments = %d, want 1", len(envs))
	}
	env, ok := envs["default"]
	if !ok {
		t.Fatal("single-instance mode should expose environment \"default\"")
	}
	if env.Git.RepoURL != "/srv/cfg.git" {
		t.Errorf("repo_url = %q", env.Git.RepoURL)
	}
}

func TestEnvironmentsMultiTenant(t *testing.T) {
	cfg := &config.Config{
		Environments: map[string]config.EnvironmentConfig{
			"dev":  {},
			"prod": {},
		},
	}

	envs := environments(cfg)
	if len(envs) != 2 {
		t.Fatalf("environments = %d, want 2", len(envs))
	}
	if _, ok := envs["default"]; ok {
		t.Error("multi-tenant mode should not synthesize a default environment")
	}
}
