// Package registry implements the project registry (spec §4.1): the
// canonical, process-wide set of registered projects, with optional
// memoisation and recursive sub-project discovery.
package registry

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/architect-platform/architect-engine/internal/domain"
	"github.com/architect-platform/architect-engine/internal/errs"
)

// reservedConfigKeys are handled explicitly and never treated as a
// plugin's context slice.
var reservedConfigKeys = map[string]bool{
	"project":  true,
	"plugins":  true,
	"architect": true,
}

// subProjectsDir is the designated sub-directory (spec §4.1
// "designated sub-projects directory") whose immediate children are
// scanned for nested projects.
const subProjectsDir = "projects"

// Loader loads a project's declared plugins into its task registry.
// Satisfied by pluginloader.Loader; kept as an interface here so
// registry does not import pluginloader directly (pluginloader has no
// reason to import registry either, but this keeps the dependency
// direction explicit and one-way).
type Loader interface {
	LoadAll(proj *domain.Project) error
}

// Registry is the process-wide project registry.
type Registry struct {
	mu       sync.RWMutex
	projects map[string]*domain.Project

	loader       Loader
	cacheEnabled bool
	logger       hclog.Logger
}

// New builds a Registry. cacheEnabled mirrors the process-wide
// configuration flag (spec §4.1 "Caching").
func New(loader Loader, cacheEnabled bool, logger hclog.Logger) *Registry {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Registry{
		projects:     make(map[string]*domain.Project),
		loader:       loader,
		cacheEnabled: cacheEnabled,
		logger:       logger,
	}
}

// RegisterProject registers (or re-registers) the project at
// directory under name, loading its plugins and sub-projects (spec
// §4.1 "register_project").
func (r *Registry) RegisterProject(name, directory string) (*domain.Project, error) {
	absDir, err := filepath.Abs(directory)
	if err != nil {
		return nil, errs.Wrap(errs.ConfigInvalid, err, "cannot resolve directory %q", directory)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.projects[name]; ok {
		if existing.Directory == absDir && r.cacheEnabled {
			return existing, nil
		}
	}

	proj, err := r.build(name, absDir)
	if err != nil {
		return nil, err
	}

	r.projects[name] = proj
	return proj, nil
}

// build loads the configuration document at directory, resolves
// plugins, builds the task registry, and recurses into sub-projects.
func (r *Registry) build(name, directory string) (*domain.Project, error) {
	configPath := findConfigFile(directory)

	var parsed *parsedConfig
	if configPath != "" {
		var err error
		parsed, err = loadConfig(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		parsed = &parsedConfig{}
	}

	projectName := name
	if parsed.ProjectName != "" {
		projectName = parsed.ProjectName
	}

	proj := domain.NewProject(projectName, directory, contextDocument(parsed.Document))
	proj.SetPlugins(parsed.Plugins)

	if r.loader != nil {
		if err := r.loader.LoadAll(proj); err != nil {
			return nil, err
		}
	}

	subs, err := r.discoverSubProjects(directory)
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		proj.AttachSubProject(sub)
	}

	return proj, nil
}

// discoverSubProjects scans directory/projects for immediate
// sub-directories carrying their own configuration document, in
// stable lexicographic order (spec §4.1 "Sub-projects").
func (r *Registry) discoverSubProjects(directory string) ([]*domain.Project, error) {
	root := filepath.Join(directory, subProjectsDir)

	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ConfigInvalid, err, "failed to read sub-projects directory %q", root)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var subs []*domain.Project
	for _, childName := range names {
		childDir := filepath.Join(root, childName)
		if findConfigFile(childDir) == "" {
			continue
		}
		sub, err := r.build(childName, childDir)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// contextDocument strips the reserved top-level keys, leaving only
// plugin context slices (spec §6.1 "any other key").
func contextDocument(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		if reservedConfigKeys[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// GetProject returns the registered project by name.
func (r *Registry) GetProject(name string) (*domain.Project, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[name]
	return p, ok
}

// ListProjects returns every registered project, sorted by name.
func (r *Registry) ListProjects() []*domain.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
