package config

// Config is the root configuration structure for Ganymede. A deployment
// is either single-instance (top-level Git) or multi-tenant
// (Environments); exactly one of the two must be set.
type Config struct {
	// HTTP contains the listener configuration.
	HTTP HTTPConfig `yaml:"http"`

	// EnvFromProcess imports the process environment as the lowest
	// layer of every effective environment map.
	EnvFromProcess bool `yaml:"env_from_process"`

	// EnvFile is an optional global env file (KEY=VALUE per line)
	// merged into every environment's map.
	EnvFile string `yaml:"env_file"`

	// Git configures single-instance mode. The repository is exposed
	// as the logical environment "default".
	Git *GitConfig `yaml:"git"`

	// Environments configures multi-tenant mode. Keys are environment
	// names as they appear in request paths.
	Environments map[string]EnvironmentConfig `yaml:"environments"`

	// ClientAuth configures the header-based client ACL.
	ClientAuth ClientAuthConfig `yaml:"client_auth"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// HTTPConfig contains configuration for the HTTP server.
type HTTPConfig struct {
	// BindAddr is the address and port to listen on, "host:port".
	BindAddr string `yaml:"bind_addr"`

	// BasePath is an optional prefix for all routes. Default: "/".
	BasePath string `yaml:"base_path"`
}

// EnvironmentConfig describes one logical environment.
type EnvironmentConfig struct {
	// Git is the repository backing this environment.
	Git GitConfig `yaml:"git"`

	// EnvFile is an optional per-environment env file merged on top of
	// the global layers.
	EnvFile string `yaml:"env_file"`
}

// GitConfig describes the Git repository backing an environment.
type GitConfig struct {
	// RepoURL is the clone URL (file:// or remote).
	RepoURL string `yaml:"repo_url"`

	// Branch is the default ref name served when a request carries no
	// label.
	Branch string `yaml:"branch"`

	// Branches is an optional whitelist of label names clients may
	// request. The default branch is always present and first after
	// normalization.
	Branches []string `yaml:"branches"`

	// Workdir is the local working directory. It is exclusively owned
	// by this environment.
	Workdir string `yaml:"workdir"`

	// Subpath is an optional repo-relative directory treated as the
	// configuration root for this environment.
	Subpath string `yaml:"subpath"`

	// RefreshIntervalSecs is the delay between background fetch+reset
	// cycles. Default: 30.
	RefreshIntervalSecs int `yaml:"refresh_interval_secs"`
}

// ClientAuthConfig configures the header-based client ACL.
type ClientAuthConfig struct {
	// Enabled turns the ACL on. When disabled the client list is
	// ignored entirely.
	Enabled bool `yaml:"enabled"`

	// HeaderName is the request header carrying the client identifier.
	// Default: "x-client-id".
	HeaderName string `yaml:"header_name"`

	// Clients is the list of known clients.
	Clients []Client `yaml:"clients"`
}

// Client describes one ACL entry.
type Client struct {
	// ID is the unique client identifier matched against the client
	// header.
	ID string `yaml:"id"`

	// Description is free-form documentation.
	Description string `yaml:"description"`

	// Environments lists environment names this client may access, or
	// ["*"] for all.
	Environments []string `yaml:"environments"`

	// Scopes lists granted scopes, a subset of
	// {config:read, files:read, env:read}.
	Scopes []string `yaml:"scopes"`

	// UIAccess grants access to the HTML UI.
	UIAccess bool `yaml:"ui_access"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	// Default: info. The LOG_LEVEL environment variable overrides it.
	Level string `yaml:"level"`

	// Format is "json" or "text". Default: json.
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled exposes /metrics. Default: true.
	Enabled *bool `yaml:"enabled"`
}

// MetricsEnabled reports the effective value of Metrics.Enabled.
func (t TelemetryConfig) MetricsEnabled() bool {
	return t.Metrics.Enabled == nil || *t.Metrics.Enabled
}
