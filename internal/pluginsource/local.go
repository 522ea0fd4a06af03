package pluginsource

import (
	"os"

	"github.com/architect-platform/architect-engine/internal/domain"
	"github.com/architect-platform/architect-engine/internal/errs"
)

// LocalSource resolves the "local" source type: the parameter "path"
// names a filesystem path to the plugin artifact directly.
type LocalSource struct{}

func (LocalSource) CanHandle(sourceType string) bool {
	return sourceType == domain.SourceTypeLocal
}

func (LocalSource) Resolve(descriptor domain.PluginDescriptor) (string, error) {
	path := descriptor.SourceParameters["path"]
	if path == "" {
		return "", errs.New(errs.PluginLoad, "local plugin %q is missing a \"path\" parameter", descriptor.PluginID)
	}
	if _, err := os.Stat(path); err != nil {
		return "", errs.Wrap(errs.PluginLoad, err, "local plugin artifact %q not found", path)
	}
	return path, nil
}

func unknownSourceTypeError(sourceType string) error {
	return errs.New(errs.PluginLoad, "no plugin source registered for type %q", sourceType)
}
