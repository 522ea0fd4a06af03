// Package httpapi implements the engine's external HTTP surface (spec
// §6.2): project registration/listing, task listing, task execution,
// the execution event stream, and the credential auth endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/architect-platform/architect-engine/internal/credentials"
	"github.com/architect-platform/architect-engine/internal/domain"
	"github.com/architect-platform/architect-engine/internal/errs"
	"github.com/architect-platform/architect-engine/internal/eventbus"
)

// ProjectRegistry is the subset of registry.Registry the HTTP surface
// needs.
type ProjectRegistry interface {
	RegisterProject(name, directory string) (*domain.Project, error)
	GetProject(name string) (*domain.Project, bool)
	ListProjects() []*domain.Project
}

// ExecuteTaskFunc is executor.Executor.ExecuteTask, accepted as a
// plain func so this package does not need to import executor.
type ExecuteTaskFunc func(ctx context.Context, projectName, taskID string, args []string) (string, error)

// Server wires the handlers onto a chi router.
type Server struct {
	router      chi.Router
	projects    ProjectRegistry
	executeTask ExecuteTaskFunc
	bus         *eventbus.Bus
	credentials *credentials.Store
	logger      hclog.Logger
}

// New builds the HTTP surface.
func New(projects ProjectRegistry, executeTask ExecuteTaskFunc, bus *eventbus.Bus, creds *credentials.Store, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	s := &Server{
		router:      chi.NewRouter(),
		projects:    projects,
		executeTask: executeTask,
		bus:         bus,
		credentials: creds,
		logger:      logger,
	}

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Route("/api/projects", func(r chi.Router) {
		r.Post("/", s.handleRegisterProject)
		r.Get("/", s.handleListProjects)
		r.Get("/{name}", s.handleGetProject)
		r.Get("/{name}/tasks", s.handleListTasks)
		r.Get("/{name}/tasks/{id}", s.handleGetTask)
		r.Post("/{name}/tasks/{id}", s.handleRunTask)
	})

	s.router.Get("/api/executions/{executionID}", s.handleStreamExecution)

	s.router.Route("/auth/{provider}", func(r chi.Router) {
		r.Post("/", s.handleAuthSet)
		r.Delete("/", s.handleAuthDelete)
		r.Get("/status", s.handleAuthStatus)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if kind, ok := errs.KindOf(err); ok {
		switch kind {
		case errs.ProjectUnknown, errs.TaskUnknown:
			status = http.StatusNotFound
		case errs.ConfigInvalid, errs.DependencyCycle, errs.DependencyUnknown, errs.TaskIDCollision:
			status = http.StatusBadRequest
		case errs.PluginLoad:
			status = http.StatusBadGateway
		}
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
