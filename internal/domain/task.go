package domain

import (
	"context"
	"sort"
	"sync"

	"github.com/architect-platform/architect-engine/internal/errs"
)

// TaskHandler is a task's executable body.
type TaskHandler func(ctx context.Context, env Environment, pctx *ProjectContext, args []string) (*TaskResult, error)

// Task is a unit of work a plugin registers into a project's registry.
type Task struct {
	ID          string
	Phase       Phase    // optional; "" means unbound to any workflow
	DependsOn   []string // optional explicit dependency task ids
	Description string
	Handler     TaskHandler

	owner string // plugin id that registered this task, for collision messages
}

// TaskRegistry is the per-project mapping from task id to task record.
// Insertion detects id collisions; Listing is id-ordered.
type TaskRegistry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewTaskRegistry returns an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{tasks: make(map[string]*Task)}
}

// Add inserts a task, failing TASK_ID_COLLISION if the id is already
// registered. owner is the plugin id, used only to produce a message
// naming both plugins on collision.
func (r *TaskRegistry) Add(t *Task, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.tasks[t.ID]; ok {
		return errs.New(errs.TaskIDCollision,
			"task id %q registered by more than one plugin (%s, %s)", t.ID, existing.owner, owner)
	}

	cp := *t
	cp.owner = owner
	r.tasks[t.ID] = &cp
	return nil
}

// Get returns the task for id, or (nil, false) if unknown.
func (r *TaskRegistry) Get(id string) (*Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	return t, ok
}

// List returns every task sorted ascending by id.
func (r *TaskRegistry) List() []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// All returns a defensive-copy-free map for algorithms (taskregistry
// package) that need direct access to every record keyed by id.
func (r *TaskRegistry) All() map[string]*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*Task, len(r.tasks))
	for id, t := range r.tasks {
		out[id] = t
	}
	return out
}
