package domain

// PluginDescriptor is what the project configuration declares for a
// single plugin: where to get its artifact, which plugin it names,
// and which version.
type PluginDescriptor struct {
	SourceType       string // e.g. "local", "remote-release"
	SourceParameters map[string]string
	PluginID         string
	Version          string
}

// Built-in source type names recognised by the core (spec §3).
const (
	SourceTypeLocal         = "local"
	SourceTypeRemoteRelease = "remote-release"
)
