package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/auth"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/envmap"
	"mercator-hq/ganymede/pkg/environment"
	"mercator-hq/ganymede/pkg/gitws"
	"mercator-hq/ganymede/pkg/server"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

var runFlags struct {
	bindAddr string
	logLevel string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Ganymede configuration server",
	Long: `Start the Ganymede configuration server with the specified configuration.

Startup builds the effective environment maps, clones (or opens) every
environment's Git workspace, starts the background refresh schedule, and
then serves HTTP until interrupted.

Examples:
  # Start with default config
  ganymede run

  # Start with custom config
  ganymede run --config /etc/ganymede/config.yaml

  # Override listen address
  ganymede run --listen 0.0.0.0:8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.bindAddr, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	if runFlags.bindAddr != "" {
		cfg.HTTP.BindAddr = runFlags.bindAddr
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	setupLogging(&cfg.Telemetry.Logging)

	ctx := context.Background()

	// Build all effective env maps before touching Git: they are
	// immutable for the process lifetime.
	builder := envmap.NewBuilder(cfg.EnvFromProcess, cfg.EnvFile)

	registry := environment.NewRegistry()
	manager := gitws.NewManager()
	for name, envCfg := range environments(cfg) {
		git := envCfg.Git
		registry.Add(&environment.Environment{
			Name:      name,
			Workspace: manager.Add(name, &git),
			EnvMap:    builder.Build(envCfg.EnvFile),
		})
	}

	// Initialize workspaces sequentially; any failure aborts startup.
	if err := manager.Init(ctx); err != nil {
		return err
	}

	collector := metrics.NewCollector(nil)
	manager.SetObserver(collector)
	if err := manager.StartRefresher(ctx); err != nil {
		return err
	}

	gate := auth.NewGate(auth.BasicFromEnv(), cfg.ClientAuth)

	srv := server.NewServer(cfg, registry, manager, gate, collector)
	return srv.Start(ctx)
}

// environments returns the configured environment set. Single-instance
// mode exposes the sole repository as the logical environment
// "default".
func environments(cfg *config.Config) map[string]config.EnvironmentConfig {
	if cfg.Git != nil {
		return map[string]config.EnvironmentConfig{
			"default": {Git: *cfg.Git, EnvFile: ""},
		}
	}
	return cfg.Environments
}

// setupLogging installs the default slog logger per configuration.
func setupLogging(cfg *config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
