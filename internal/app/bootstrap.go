package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"mcpi/internal/config"
	"mcpi/internal/plugin"
	"mcpi/internal/server"
	"mcpi/pkg/logging"
)

// Config carries the process-level options set by command line flags.
type Config struct {
	// ConfigPath is the YAML configuration file to load.
	ConfigPath string
	// Debug enables debug-level logging.
	Debug bool
	// Version is the build version reported by the server.
	Version string
}

// Application is a fully bootstrapped MCPI server process.
type Application struct {
	cfg    config.ServerConfig
	server *server.Server
}

// NewApplication performs the bootstrap sequence: logging, configuration,
// plugin registry, server wiring. It fails fast on any startup error; the
// server never runs with a partially valid capability set.
func NewApplication(appCfg *Config) (*Application, error) {
	level := logging.LevelInfo
	if appCfg.Debug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)

	cfg, err := config.LoadConfig(appCfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	registry, err := plugin.Load(&cfg)
	if err != nil {
		return nil, fmt.Errorf("building plugin registry: %w", err)
	}

	logging.Info("App", "Bootstrapped %s (%s) with %d capabilities",
		cfg.Provider.Name, cfg.Provider.Domain, len(cfg.Capabilities))

	return &Application{
		cfg:    cfg,
		server: server.NewServer(cfg, registry, appCfg.Version),
	}, nil
}

// Run serves until the context is cancelled or SIGINT/SIGTERM arrives, then
// shuts the server down gracefully. It blocks for the process lifetime.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Start(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		logging.Info("App", "Shutting down")
		return a.server.Stop(context.Background())
	})
	return g.Wait()
}
