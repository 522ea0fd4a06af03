// Package config loads the engine's process-wide tunables once at
// start-up and hands back an immutable EngineConfig, mirroring the
// teacher's cobra/viper config-file convention but rooted at
// ~/.architect-engine instead of ~/.reorg.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// EngineConfig holds every process-wide tunable named in spec §9
// ("Global configuration") and §4.5 ("Bounds").
type EngineConfig struct {
	// ListenAddr is the HTTP surface bind address.
	ListenAddr string

	// ProjectCacheEnabled toggles the project-registration cache
	// (spec §4.1 "Caching").
	ProjectCacheEnabled bool

	// CommandTimeout is the command executor's default wall-clock
	// timeout (spec §4.4, default 300s).
	CommandTimeout time.Duration

	// EventReplaySize bounds how many buffered events a late
	// subscriber replays (spec §4.5, default 64).
	EventReplaySize int

	// SubscriberBufferSize bounds each live subscriber's channel
	// (spec §4.5, default 64).
	SubscriberBufferSize int

	// PluginCacheDir is where remote-release plugin artifacts are
	// cached on disk, keyed by descriptor hash (spec §4.2, §9).
	PluginCacheDir string

	// PluginDownloadTimeout bounds a single remote-release fetch.
	PluginDownloadTimeout time.Duration

	// PluginDownloadRetries bounds the retry budget for a fetch.
	PluginDownloadRetries int

	// CredentialFile is the path to the credential store (spec §6.4).
	CredentialFile string
}

// Default returns the engine's built-in defaults, used when no config
// file or environment override is present.
func Default() EngineConfig {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".architect-engine")
	return EngineConfig{
		ListenAddr:            ":7420",
		ProjectCacheEnabled:   true,
		CommandTimeout:        300 * time.Second,
		EventReplaySize:       64,
		SubscriberBufferSize:  64,
		PluginCacheDir:        filepath.Join(base, "plugins", "cache"),
		PluginDownloadTimeout: 30 * time.Second,
		PluginDownloadRetries: 3,
		CredentialFile:        filepath.Join(base, "config.yml"),
	}
}

// Load reads an optional config file (cfgFile, or
// ~/.architect-engine/engine.yml when empty) plus ARCHITECT_-prefixed
// environment variables, layered over Default().
func Load(cfgFile string) (EngineConfig, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("ARCHITECT")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("resolving home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".architect-engine"))
		v.SetConfigName("engine")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && cfgFile != "" {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		// No config file is fine; defaults + env vars still apply.
	}

	if v.IsSet("listen_addr") {
		cfg.ListenAddr = v.GetString("listen_addr")
	}
	if v.IsSet("project_cache_enabled") {
		cfg.ProjectCacheEnabled = v.GetBool("project_cache_enabled")
	}
	if v.IsSet("command_timeout_seconds") {
		cfg.CommandTimeout = time.Duration(v.GetInt64("command_timeout_seconds")) * time.Second
	}
	if v.IsSet("event_replay_size") {
		cfg.EventReplaySize = v.GetInt("event_replay_size")
	}
	if v.IsSet("subscriber_buffer_size") {
		cfg.SubscriberBufferSize = v.GetInt("subscriber_buffer_size")
	}
	if v.IsSet("plugin_cache_dir") {
		cfg.PluginCacheDir = v.GetString("plugin_cache_dir")
	}
	if v.IsSet("plugin_download_timeout_seconds") {
		cfg.PluginDownloadTimeout = time.Duration(v.GetInt64("plugin_download_timeout_seconds")) * time.Second
	}
	if v.IsSet("plugin_download_retries") {
		cfg.PluginDownloadRetries = v.GetInt("plugin_download_retries")
	}
	if v.IsSet("credential_file") {
		cfg.CredentialFile = v.GetString("credential_file")
	}

	return cfg, nil
}
