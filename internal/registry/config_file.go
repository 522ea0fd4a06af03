package registry

import (
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/architect-platform/architect-engine/internal/domain"
	"github.com/architect-platform/architect-engine/internal/errs"
)

// configFileNames are tried in order at a project's root (spec §6.1).
var configFileNames = []string{"architect.yml", "architect.yaml"}

type rawPluginEntry struct {
	Name    string `yaml:"name"`
	Repo    string `yaml:"repo"`
	Type    string `yaml:"type"`
	Path    string `yaml:"path"`
	Version string `yaml:"version"`
}

type rawProjectIdentity struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type rawVersions struct {
	CliVersion    string `yaml:"cliVersion"`
	EngineVersion string `yaml:"engineVersion"`
}

// parsedConfig is the decoded shape of one architect.yml document.
type parsedConfig struct {
	ProjectName string
	Plugins     []domain.PluginDescriptor
	Pinned      rawVersions
	Document    map[string]interface{} // full document, for plugin context slices
}

// findConfigFile returns the path to dir's configuration document, or
// "" if none of the recognised names is present.
func findConfigFile(dir string) string {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadConfig parses the configuration document at path (spec §6.1).
func loadConfig(path string) (*parsedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ConfigInvalid, err, "failed to read configuration %q", path)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ConfigInvalid, err, "configuration %q is not valid YAML", path)
	}

	out := &parsedConfig{Document: doc}

	if raw, ok := doc["project"]; ok {
		var identity rawProjectIdentity
		if err := mapstructure.Decode(raw, &identity); err != nil {
			return nil, errs.Wrap(errs.ConfigInvalid, err, "invalid \"project\" section in %q", path)
		}
		out.ProjectName = identity.Name
	}

	if raw, ok := doc["architect"]; ok {
		_ = mapstructure.Decode(raw, &out.Pinned)
	}

	if raw, ok := doc["plugins"]; ok {
		var entries []rawPluginEntry
		if err := mapstructure.Decode(raw, &entries); err != nil {
			return nil, errs.Wrap(errs.ConfigInvalid, err, "invalid \"plugins\" section in %q", path)
		}
		for _, e := range entries {
			out.Plugins = append(out.Plugins, toDescriptor(e))
		}
	}

	return out, nil
}

func toDescriptor(e rawPluginEntry) domain.PluginDescriptor {
	sourceType := e.Type
	if sourceType == "" {
		switch {
		case e.Repo != "":
			sourceType = domain.SourceTypeRemoteRelease
		case e.Path != "":
			sourceType = domain.SourceTypeLocal
		}
	}

	params := make(map[string]string)
	if e.Repo != "" {
		params["repo"] = e.Repo
	}
	if e.Path != "" {
		params["path"] = e.Path
	}

	return domain.PluginDescriptor{
		SourceType:       sourceType,
		SourceParameters: params,
		PluginID:         e.Name,
		Version:          e.Version,
	}
}
