// Package pluginsource resolves a plugin descriptor `{type,
// parameters}` to a local artifact file (spec §4.2 "Plugin source").
package pluginsource

import (
	"github.com/architect-platform/architect-engine/internal/domain"
)

// Source is a strategy that knows how to turn one kind of plugin
// source descriptor into a local artifact path.
type Source interface {
	CanHandle(sourceType string) bool
	Resolve(descriptor domain.PluginDescriptor) (string, error)
}

// Registry dispatches a descriptor to the Source that handles its
// type, and is itself extensible (spec §4.2 "extensible via a
// strategy registry").
type Registry struct {
	sources []Source
}

// NewRegistry builds a registry over the given sources, consulted in
// order.
func NewRegistry(sources ...Source) *Registry {
	return &Registry{sources: sources}
}

// Register appends an additional source strategy, e.g. one loaded
// from a plugin itself.
func (r *Registry) Register(s Source) {
	r.sources = append(r.sources, s)
}

// Resolve finds the first registered source that handles
// descriptor.SourceType and delegates to it.
func (r *Registry) Resolve(descriptor domain.PluginDescriptor) (string, error) {
	for _, s := range r.sources {
		if s.CanHandle(descriptor.SourceType) {
			return s.Resolve(descriptor)
		}
	}
	return "", unknownSourceTypeError(descriptor.SourceType)
}
