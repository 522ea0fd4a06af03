package domain

import "sync"

// Project is a registered unit of work. Projects form a tree: each
// carries a task registry built from loaded plugins and an ordered
// sequence of sub-projects. Invariant: the tree is acyclic and each
// project's name is unique within its parent.
type Project struct {
	Name      string
	Directory string

	mu      sync.RWMutex
	config  map[string]interface{}
	tasks   *TaskRegistry
	subs    []*Project
	plugins []PluginDescriptor
}

// NewProject creates a project with an empty task registry.
func NewProject(name, directory string, config map[string]interface{}) *Project {
	return &Project{
		Name:      name,
		Directory: directory,
		config:    config,
		tasks:     NewTaskRegistry(),
	}
}

// Tasks returns the project's task registry.
func (p *Project) Tasks() *TaskRegistry { return p.tasks }

// Config returns the project's decoded configuration document.
func (p *Project) Config() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config
}

// SubProjects returns the attached sub-projects in registration
// (lexicographic) order.
func (p *Project) SubProjects() []*Project {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Project, len(p.subs))
	copy(out, p.subs)
	return out
}

// AttachSubProject appends a sub-project. Callers are responsible for
// lexicographic ordering (the registry attaches in that order).
func (p *Project) AttachSubProject(sub *Project) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, sub)
}

// Plugins returns the descriptors this project's configuration
// declared, in declaration order.
func (p *Project) Plugins() []PluginDescriptor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]PluginDescriptor, len(p.plugins))
	copy(out, p.plugins)
	return out
}

// SetPlugins records the resolved plugin descriptors for this project.
func (p *Project) SetPlugins(descs []PluginDescriptor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plugins = descs
}

// Context returns the read-only snapshot passed to task handlers.
func (p *Project) Context() *ProjectContext {
	return &ProjectContext{Name: p.Name, Directory: p.Directory, Config: p.Config()}
}
