// Package executor implements the recursive task executor (spec
// §4.4): depth-first descent over a project's sub-project tree,
// per-execution event streaming, result caching, and a
// bounded-timeout command-execution primitive.
package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/architect-platform/architect-engine/internal/domain"
	"github.com/architect-platform/architect-engine/internal/errs"
	"github.com/architect-platform/architect-engine/internal/eventbus"
	"github.com/architect-platform/architect-engine/internal/taskregistry"
)

// ProjectLookup is the subset of the project registry the executor
// needs: resolving a project by name. Kept as an interface so the
// executor does not import the registry package directly.
type ProjectLookup interface {
	GetProject(name string) (*domain.Project, bool)
}

// Executor runs resolved task sequences against a project tree.
type Executor struct {
	bus      *eventbus.Bus
	projects ProjectLookup
	logger   hclog.Logger

	cacheEnabled bool
	cmdTimeout   time.Duration

	mu         sync.RWMutex
	executions map[string]*execState

	cacheMu sync.Mutex
	cache   map[string]*domain.TaskResult
}

type execState struct {
	record    *domain.Execution
	cancelled atomic.Bool
}

// Config bundles the tunables the executor needs from the global
// engine configuration.
type Config struct {
	CacheEnabled   bool
	CommandTimeout time.Duration
}

// New creates an Executor.
func New(bus *eventbus.Bus, projects ProjectLookup, cfg Config, logger hclog.Logger) *Executor {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Executor{
		bus:          bus,
		projects:     projects,
		logger:       logger,
		cacheEnabled: cfg.CacheEnabled,
		cmdTimeout:   cfg.CommandTimeout,
		executions:   make(map[string]*execState),
		cache:        make(map[string]*domain.TaskResult),
	}
}

// ExecuteTask validates the request, allocates an execution id, and
// starts the recursive descent in the background (spec §4.4
// "Contract of execute_task").
func (e *Executor) ExecuteTask(ctx context.Context, projectName, taskID string, args []string) (string, error) {
	proj, ok := e.projects.GetProject(projectName)
	if !ok {
		return "", errs.New(errs.ProjectUnknown, "project %q is not registered", projectName)
	}
	if _, ok := proj.Tasks().Get(taskID); !ok {
		return "", errs.New(errs.TaskUnknown, "task %q is not registered on project %q", taskID, projectName)
	}

	executionID := uuid.New().String()
	state := &execState{
		record: &domain.Execution{
			ID:          executionID,
			ProjectName: projectName,
			RootTaskID:  taskID,
			Args:        args,
			Status:      domain.ExecutionStarted,
			StartedAt:   time.Now(),
		},
	}

	e.mu.Lock()
	e.executions[executionID] = state
	e.mu.Unlock()

	go e.run(executionID, state, proj, taskID, args)

	return executionID, nil
}

// Cancel cooperatively cancels an in-flight execution: pending
// per-task starts are aborted, but a handler already running is left
// to finish (spec §4.4 "Cancellation").
func (e *Executor) Cancel(executionID string) bool {
	e.mu.RLock()
	state, ok := e.executions[executionID]
	e.mu.RUnlock()
	if !ok {
		return false
	}
	state.cancelled.Store(true)
	return true
}

// GetExecution returns the (possibly still in-flight) execution
// record.
func (e *Executor) GetExecution(executionID string) (*domain.Execution, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	state, ok := e.executions[executionID]
	if !ok {
		return nil, false
	}
	return state.record, true
}

func (e *Executor) run(executionID string, state *execState, proj *domain.Project, taskID string, args []string) {
	e.setStatus(state, domain.ExecutionRunning)

	outcome := e.executeProject(context.Background(), executionID, state, proj, "", taskID, args)

	final := domain.ExecutionCompleted
	kind := domain.EventCompleted
	message := "execution completed"
	if !outcome.allTerminalOK {
		final = domain.ExecutionFailed
		kind = domain.EventFailed
		message = "execution failed"
	}
	if state.cancelled.Load() && outcome.abortedByCancel {
		final = domain.ExecutionFailed
		kind = domain.EventFailed
		message = "cancelled"
	}

	e.mu.Lock()
	state.record.Status = final
	state.record.EndedAt = time.Now()
	state.record.Message = message
	e.mu.Unlock()

	e.bus.Emit(executionID, domain.ExecutionEvent{
		ExecutionID: executionID,
		Kind:        kind,
		Project:     proj.Name,
		Success:     final == domain.ExecutionCompleted,
		Message:     message,
	})
	e.bus.Close(executionID)
}

func (e *Executor) setStatus(state *execState, status domain.ExecutionStatus) {
	e.mu.Lock()
	state.record.Status = status
	e.mu.Unlock()
}

type projectOutcome struct {
	allTerminalOK   bool
	abortedByCancel bool
}

// executeProject runs the resolved task sequence for one project,
// after first recursing depth-first into its sub-projects in
// registration order (spec §4.4 "Recursive descent").
func (e *Executor) executeProject(ctx context.Context, executionID string, state *execState, proj *domain.Project, parentProject, taskID string, args []string) projectOutcome {
	for _, sub := range proj.SubProjects() {
		if _, ok := sub.Tasks().Get(taskID); !ok {
			continue // this sub-project does not implement the task; skip it
		}

		outcome := e.executeProject(ctx, executionID, state, sub, proj.Name, taskID, args)
		if !outcome.allTerminalOK {
			return outcome
		}
	}

	order, err := taskregistry.Resolve(proj.Tasks(), taskID)
	if err != nil {
		e.bus.Emit(executionID, domain.ExecutionEvent{
			Kind:         domain.EventFailed,
			Project:      proj.Name,
			ParentProject: parentProject,
			TaskID:       taskID,
			ErrorDetails: err.Error(),
			Message:      "failed to resolve task order",
		})
		return projectOutcome{allTerminalOK: false}
	}

	for _, id := range order {
		if state.cancelled.Load() {
			return projectOutcome{allTerminalOK: false, abortedByCancel: true}
		}

		t, _ := proj.Tasks().Get(id)
		ok := e.runTask(ctx, executionID, proj, parentProject, t, args)
		if !ok {
			return projectOutcome{allTerminalOK: false}
		}
	}

	return projectOutcome{allTerminalOK: true}
}

// runTask runs a single task's handler, emitting STARTED then exactly
// one terminal event for it (spec §4.4 "Per-task execution").
func (e *Executor) runTask(ctx context.Context, executionID string, proj *domain.Project, parentProject string, t *domain.Task, args []string) bool {
	e.bus.Emit(executionID, domain.ExecutionEvent{
		Kind:          domain.EventStarted,
		Project:       proj.Name,
		ParentProject: parentProject,
		TaskID:        t.ID,
	})

	key := cacheKey(t.ID, args, proj.Name)
	if e.cacheEnabled {
		if cached, ok := e.lookupCache(key); ok {
			e.bus.Emit(executionID, domain.ExecutionEvent{
				Kind:          domain.EventSkipped,
				Project:       proj.Name,
				ParentProject: parentProject,
				TaskID:        t.ID,
				Success:       true,
				Message:       cached.Message,
			})
			return true
		}
	}

	env := NewEnvironment(&CommandExecutor{DefaultTimeout: e.cmdTimeout}, proj.Directory, proj.Directory)
	result, err := e.invokeHandler(t, env, proj.Context(), args)

	if err != nil {
		e.bus.Emit(executionID, domain.ExecutionEvent{
			Kind:          domain.EventFailed,
			Project:       proj.Name,
			ParentProject: parentProject,
			TaskID:        t.ID,
			Message:       err.Error(),
			ErrorDetails:  renderDiagnostic(err),
		})
		return false
	}

	if result.Failed() {
		e.bus.Emit(executionID, domain.ExecutionEvent{
			Kind:          domain.EventFailed,
			Project:       proj.Name,
			ParentProject: parentProject,
			TaskID:        t.ID,
			Message:       result.Message,
			ErrorDetails:  result.Render(),
		})
		return false
	}

	if e.cacheEnabled {
		e.storeCache(key, result)
	}

	e.bus.Emit(executionID, domain.ExecutionEvent{
		Kind:          domain.EventTaskCompleted,
		Project:       proj.Name,
		ParentProject: parentProject,
		TaskID:        t.ID,
		Success:       true,
		Message:       result.Message,
	})
	return true
}

// invokeHandler calls the task's handler with a context detached from
// the execution's cancellation signal, so an already-running handler
// is never interrupted (spec §4.4 "Cancellation"), and converts a
// panic into a HANDLER_FAILED error rather than aborting the host
// process (spec §5 "Failure containment"). A handler's own error is
// returned unchanged.
func (e *Executor) invokeHandler(t *domain.Task, env domain.Environment, pctx *domain.ProjectContext, args []string) (result *domain.TaskResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.New(errs.HandlerFailed, "task %q panicked: %v", t.ID, r)
		}
	}()
	return t.Handler(context.Background(), env, pctx, args)
}

func renderDiagnostic(err error) string {
	if kind, ok := errs.KindOf(err); ok {
		return fmt.Sprintf("%s: %s", kind, err.Error())
	}
	return err.Error()
}

func cacheKey(taskID string, args []string, projectName string) string {
	return taskID + "\x00" + strings.Join(args, "\x1f") + "\x00" + projectName
}

func (e *Executor) lookupCache(key string) (*domain.TaskResult, bool) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	r, ok := e.cache[key]
	return r, ok
}

func (e *Executor) storeCache(key string, result *domain.TaskResult) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	e.cache[key] = result
}
