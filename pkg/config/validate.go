package config

import (
	"fmt"
	"strings"
)

// knownScopes are the client ACL scopes understood by the server.
var knownScopes = map[string]bool{
	"config:read": true,
	"files:read":  true,
	"env:read":    true,
}

// Validate checks the configuration for structural errors. It is called
// after defaults have been applied.
func Validate(cfg *Config) error {
	if cfg.HTTP.BindAddr == "" {
		return fmt.Errorf("http.bind_addr is required")
	}

	hasSingle := cfg.Git != nil
	hasMulti := len(cfg.Environments) > 0
	if hasSingle && hasMulti {
		return fmt.Errorf("git and environments are mutually exclusive")
	}
	if !hasSingle && !hasMulti {
		return fmt.Errorf("either git or environments must be configured")
	}

	if hasSingle {
		if err := validateGit("git", cfg.Git); err != nil {
			return err
		}
	}
	workdirs := make(map[string]string)
	for name, env := range cfg.Environments {
		if err := validateGit(fmt.Sprintf("environments.%s.git", name), &env.Git); err != nil {
			return err
		}
		if prev, ok := workdirs[env.Git.Workdir]; ok {
			return fmt.Errorf("environments %q and %q share workdir %q", prev, name, env.Git.Workdir)
		}
		workdirs[env.Git.Workdir] = name
	}

	return validateClients(&cfg.ClientAuth)
}

func validateGit(field string, git *GitConfig) error {
	if git.RepoURL == "" {
		return fmt.Errorf("%s.repo_url is required", field)
	}
	if git.Branch == "" {
		return fmt.Errorf("%s.branch is required", field)
	}
	if git.Workdir == "" {
		return fmt.Errorf("%s.workdir is required", field)
	}
	if strings.HasPrefix(git.Subpath, "/") {
		return fmt.Errorf("%s.subpath must be repo-relative", field)
	}
	return nil
}

func validateClients(auth *ClientAuthConfig) error {
	if !auth.Enabled {
		return nil
	}
	seen := make(map[string]bool)
	for _, client := range auth.Clients {
		if client.ID == "" {
			return fmt.Errorf("client_auth.clients entries require an id")
		}
		if seen[client.ID] {
			return fmt.Errorf("duplicate client id %q", client.ID)
		}
		seen[client.ID] = true
		for _, scope := range client.Scopes {
			if !knownScopes[scope] {
				return fmt.Errorf("client %q has unknown scope %q", client.ID, scope)
			}
		}
	}
	return nil
}
