// Command architectd runs the engine daemon: it loads configuration,
// wires the project registry, plugin loader, executor, and event bus
// together, and serves the HTTP surface described in spec §6.2.
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/architect-platform/architect-engine/internal/config"
	"github.com/architect-platform/architect-engine/internal/credentials"
	"github.com/architect-platform/architect-engine/internal/eventbus"
	"github.com/architect-platform/architect-engine/internal/executor"
	"github.com/architect-platform/architect-engine/internal/httpapi"
	"github.com/architect-platform/architect-engine/internal/pluginloader"
	"github.com/architect-platform/architect-engine/internal/pluginsource"
	"github.com/architect-platform/architect-engine/internal/registry"
)

func main() {
	cfgFile := pflag.String("config", "", "path to engine.yml (defaults to ~/.architect-engine/engine.yml)")
	pflag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "architectd",
		Level: hclog.LevelFromString(envOr("ARCHITECT_LOG_LEVEL", "info")),
	})

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	credStore, err := credentials.Open(cfg.CredentialFile)
	if err != nil {
		logger.Error("failed to open credential store", "error", err)
		os.Exit(1)
	}

	cache, err := pluginsource.NewCache(cfg.PluginCacheDir)
	if err != nil {
		logger.Error("failed to create plugin cache", "error", err)
		os.Exit(1)
	}

	sources := pluginsource.NewRegistry(
		pluginsource.LocalSource{},
		pluginsource.NewRemoteReleaseSource(cache, cfg.PluginDownloadTimeout, cfg.PluginDownloadRetries, credStore),
	)

	loader := pluginloader.New(sources, logger.Named("pluginloader"))
	projects := registry.New(loader, cfg.ProjectCacheEnabled, logger.Named("registry"))

	bus := eventbus.New(cfg.EventReplaySize, cfg.SubscriberBufferSize, logger.Named("eventbus"))
	exec := executor.New(bus, projects, executor.Config{
		CacheEnabled:   cfg.ProjectCacheEnabled,
		CommandTimeout: cfg.CommandTimeout,
	}, logger.Named("executor"))

	server := httpapi.New(projects, exec.ExecuteTask, bus, credStore, logger.Named("http"))

	logger.Info("engine listening", "addr", cfg.ListenAddr)
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // execution streams are long-lived
	}
	if err := httpServer.ListenAndServe(); err != nil {
		logger.Error("engine stopped", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
