package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"os"
	"slices"

	"mercator-hq/ganymede/pkg/config"
)

// Scope identifies the permission a route requires.
type Scope string

const (
	ScopeConfigRead Scope = "config:read"
	ScopeFilesRead  Scope = "files:read"
	ScopeEnvRead    Scope = "env:read"
	ScopeUI         Scope = "ui"
)

// BasicCredentials is the configured Basic Auth username/password pair.
type BasicCredentials struct {
	Username string
	Password string
}

// BasicFromEnv reads AUTH_USERNAME and AUTH_PASSWORD from the process
// environment. Both must be set to enable Basic Auth; otherwise nil is
// returned and the mechanism is disabled.
func BasicFromEnv() *BasicCredentials {
	user, userOK := os.LookupEnv("AUTH_USERNAME")
	pass, passOK := os.LookupEnv("AUTH_PASSWORD")
	if !userOK || !passOK {
		return nil
	}
	return &BasicCredentials{Username: user, Password: pass}
}

// Decision is the outcome of an authorization check.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Status is the HTTP status to deny with (401 or 403).
	Status int

	// Challenge requests a WWW-Authenticate: Basic response header.
	Challenge bool
}

var allow = Decision{Allowed: true}

// Gate evaluates requests against the configured mechanisms.
type Gate struct {
	basic   *BasicCredentials
	acl     config.ClientAuthConfig
	clients map[string]config.Client
	logger  *slog.Logger
}

// NewGate creates a gate. basic may be nil when Basic Auth is disabled.
func NewGate(basic *BasicCredentials, acl config.ClientAuthConfig) *Gate {
	clients := make(map[string]config.Client, len(acl.Clients))
	for _, c := range acl.Clients {
		clients[c.ID] = c
	}
	logger := slog.Default().With("component", "auth")
	if basic != nil {
		logger.Info("basic auth enabled", "username", basic.Username)
	} else {
		logger.Warn("basic auth disabled (AUTH_USERNAME / AUTH_PASSWORD not set)")
	}
	if acl.Enabled {
		logger.Info("client acl enabled", "header", acl.HeaderName, "clients", len(acl.Clients))
	}
	return &Gate{basic: basic, acl: acl, clients: clients, logger: logger}
}

// BasicEnabled reports whether Basic Auth is configured.
func (g *Gate) BasicEnabled() bool {
	return g.basic != nil
}

// Authorize decides whether a request may access a route. env is the
// target environment name, or empty for routes that are not
// env-scoped (the UI). The precedence is fixed: with neither mechanism
// enabled everything is allowed; valid Basic credentials allow
// regardless of the client header; otherwise the client ACL is
// consulted when enabled.
func (g *Gate) Authorize(r *http.Request, env string, scope Scope) Decision {
	if g.basic == nil && !g.acl.Enabled {
		return allow
	}

	if g.basic != nil {
		if user, pass, ok := r.BasicAuth(); ok && g.basicMatch(user, pass) {
			return allow
		}
		if !g.acl.Enabled {
			return Decision{Status: http.StatusUnauthorized, Challenge: true}
		}
	}

	id := r.Header.Get(g.acl.HeaderName)
	client, known := g.clients[id]
	if id == "" || !known {
		return Decision{Status: http.StatusUnauthorized, Challenge: g.basic != nil}
	}

	if env != "" && !envAllowed(client.Environments, env) {
		g.logger.Warn("client denied for environment", "client", id, "env", env)
		return Decision{Status: http.StatusForbidden}
	}
	if !scopeAllowed(client, scope) {
		g.logger.Warn("client denied for scope", "client", id, "scope", scope)
		return Decision{Status: http.StatusForbidden}
	}
	return allow
}

func (g *Gate) basicMatch(user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(g.basic.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(g.basic.Password)) == 1
	return userOK && passOK
}

func envAllowed(envs []string, env string) bool {
	return slices.Contains(envs, "*") || slices.Contains(envs, env)
}

func scopeAllowed(client config.Client, scope Scope) bool {
	if scope == ScopeUI {
		return client.UIAccess
	}
	return slices.Contains(client.Scopes, string(scope))
}
