package pluginsdk

import (
	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"
)

const (
	// Name is the key the host dispenses under.
	Name = "architect-plugin"

	// ProtocolVersion is bumped on breaking changes to Plugin.
	ProtocolVersion = 1

	// MagicCookieKey/Value guard against a plugin binary being run
	// directly instead of launched by the engine.
	MagicCookieKey   = "ARCHITECT_PLUGIN"
	MagicCookieValue = "architect-plugin-v1"
)

// Handshake must match between host and plugin.
var Handshake = goplugin.HandshakeConfig{
	ProtocolVersion:  ProtocolVersion,
	MagicCookieKey:   MagicCookieKey,
	MagicCookieValue: MagicCookieValue,
}

// Serve starts the plugin server. Call this, and nothing else, from a
// plugin executable's main().
func Serve(impl Plugin) {
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]goplugin.Plugin{
			Name: &GoPlugin{Impl: impl},
		},
	})
}

// ServeWithLogger is Serve with an explicit logger, for plugins that
// want their own named hclog.Logger rather than go-plugin's default.
func ServeWithLogger(impl Plugin, logger hclog.Logger) {
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]goplugin.Plugin{
			Name: &GoPlugin{Impl: impl},
		},
		Logger: logger,
	})
}
