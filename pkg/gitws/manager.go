package gitws

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/ganymede/pkg/config"
)

// RefreshObserver receives the outcome of every refresh attempt.
type RefreshObserver interface {
	ObserveRefresh(env string, duration time.Duration, err error)
}

// Manager owns the workspaces of all configured environments and drives
// their periodic refresh.
type Manager struct {
	workspaces map[string]*Workspace
	cron       *cron.Cron
	observer   RefreshObserver
	logger     *slog.Logger
}

// NewManager creates an empty workspace manager.
func NewManager() *Manager {
	return &Manager{
		workspaces: make(map[string]*Workspace),
		cron:       cron.New(),
		logger:     slog.Default().With("component", "gitws.manager"),
	}
}

// SetObserver attaches a refresh observer. Must be called before
// StartRefresher.
func (m *Manager) SetObserver(o RefreshObserver) {
	m.observer = o
}

// Add registers a workspace for the named environment.
func (m *Manager) Add(env string, cfg *config.GitConfig) *Workspace {
	ws := NewWorkspace(env, cfg)
	m.workspaces[env] = ws
	return ws
}

// Get returns the workspace for the named environment.
func (m *Manager) Get(env string) (*Workspace, bool) {
	ws, ok := m.workspaces[env]
	return ws, ok
}

// Envs returns the registered environment names, sorted.
func (m *Manager) Envs() []string {
	names := make([]string, 0, len(m.workspaces))
	for name := range m.workspaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Statuses returns the refresh status of every workspace, sorted by
// environment name.
func (m *Manager) Statuses() []RefreshStatus {
	statuses := make([]RefreshStatus, 0, len(m.workspaces))
	for _, name := range m.Envs() {
		statuses = append(statuses, m.workspaces[name].Status())
	}
	return statuses
}

// Init initializes all workspaces sequentially. The first failure
// aborts: the server must not start with a partially usable
// environment set.
func (m *Manager) Init(ctx context.Context) error {
	for _, name := range m.Envs() {
		ws := m.workspaces[name]
		start := time.Now()
		if err := ws.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize environment %q: %w", name, err)
		}
		m.logger.Info("workspace ready",
			"env", name,
			"head", ws.Status().Head,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return nil
}

// StartRefresher schedules one periodic refresh job per environment at
// its configured interval. Refresh failures are logged; the schedule
// keeps running and the next tick retries.
func (m *Manager) StartRefresher(ctx context.Context) error {
	for _, name := range m.Envs() {
		ws := m.workspaces[name]
		spec := fmt.Sprintf("@every %ds", ws.Config().RefreshIntervalSecs)
		_, err := m.cron.AddFunc(spec, func() {
			start := time.Now()
			err := ws.Refresh(ctx)
			if m.observer != nil {
				m.observer.ObserveRefresh(ws.Env(), time.Since(start), err)
			}
			if err != nil {
				m.logger.Warn("periodic refresh failed", "env", ws.Env(), "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule refresh for %q: %w", name, err)
		}
	}
	m.cron.Start()
	m.logger.Info("refresh scheduler started", "environments", len(m.workspaces))
	return nil
}

// StopRefresher stops the refresh schedule and waits for an in-flight
// refresh to complete.
func (m *Manager) StopRefresher() {
	<-m.cron.Stop().Done()
}
