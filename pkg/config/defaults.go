package config

// Default values applied to unset fields.
const (
	DefaultBasePath            = "/"
	DefaultRefreshIntervalSecs = 30
	DefaultClientHeader        = "x-client-id"
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "json"
)

// ApplyDefaults fills unset fields with their default values and
// normalizes the branch whitelists: for every configured Git repository
// the default branch is forced present and first in Branches.
func ApplyDefaults(cfg *Config) {
	if cfg.HTTP.BasePath == "" {
		cfg.HTTP.BasePath = DefaultBasePath
	}
	if cfg.ClientAuth.HeaderName == "" {
		cfg.ClientAuth.HeaderName = DefaultClientHeader
	}
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}

	if cfg.Git != nil {
		applyGitDefaults(cfg.Git)
	}
	for name, env := range cfg.Environments {
		applyGitDefaults(&env.Git)
		cfg.Environments[name] = env
	}
}

func applyGitDefaults(git *GitConfig) {
	if git.RefreshIntervalSecs <= 0 {
		git.RefreshIntervalSecs = DefaultRefreshIntervalSecs
	}
	git.Branches = normalizeBranches(git.Branch, git.Branches)
}

// normalizeBranches puts the default branch first and drops duplicates
// while keeping the configured order of the rest. A nil input stays nil:
// no whitelist means any resolvable label is allowed.
func normalizeBranches(branch string, branches []string) []string {
	if len(branches) == 0 {
		return branches
	}
	out := []string{branch}
	seen := map[string]bool{branch: true}
	for _, b := range branches {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	return out
}
