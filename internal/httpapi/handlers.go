package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/architect-platform/architect-engine/internal/domain"
	"github.com/architect-platform/architect-engine/internal/errs"
)

type registerProjectRequest struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type projectSummary struct {
	Name      string   `json:"name"`
	Directory string   `json:"directory"`
	Tasks     []string `json:"tasks"`
	SubProjects []string `json:"sub_projects"`
}

func toSummary(p *domain.Project) projectSummary {
	tasks := p.Tasks().List()
	taskIDs := make([]string, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
	}

	subs := p.SubProjects()
	subNames := make([]string, 0, len(subs))
	for _, s := range subs {
		subNames = append(subNames, s.Name)
	}

	return projectSummary{Name: p.Name, Directory: p.Directory, Tasks: taskIDs, SubProjects: subNames}
}

func (s *Server) handleRegisterProject(w http.ResponseWriter, r *http.Request) {
	var req registerProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.New(errs.ConfigInvalid, "invalid request body: %v", err))
		return
	}

	proj, err := s.projects.RegisterProject(req.Name, req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummary(proj))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects := s.projects.ListProjects()
	out := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, toSummary(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	proj, ok := s.projects.GetProject(name)
	if !ok {
		writeError(w, errs.New(errs.ProjectUnknown, "project %q is not registered", name))
		return
	}
	writeJSON(w, http.StatusOK, toSummary(proj))
}

type taskSummary struct {
	ID          string   `json:"id"`
	Phase       string   `json:"phase,omitempty"`
	DependsOn   []string `json:"depends_on,omitempty"`
	Description string   `json:"description,omitempty"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	proj, ok := s.projects.GetProject(name)
	if !ok {
		writeError(w, errs.New(errs.ProjectUnknown, "project %q is not registered", name))
		return
	}

	tasks := proj.Tasks().List()
	out := make([]taskSummary, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskSummary{ID: t.ID, Phase: string(t.Phase), DependsOn: t.DependsOn, Description: t.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")

	proj, ok := s.projects.GetProject(name)
	if !ok {
		writeError(w, errs.New(errs.ProjectUnknown, "project %q is not registered", name))
		return
	}
	t, ok := proj.Tasks().Get(id)
	if !ok {
		writeError(w, errs.New(errs.TaskUnknown, "task %q is not registered on project %q", id, name))
		return
	}
	writeJSON(w, http.StatusOK, taskSummary{ID: t.ID, Phase: string(t.Phase), DependsOn: t.DependsOn, Description: t.Description})
}

type runTaskResponse struct {
	ExecutionID string `json:"execution_id"`
}

func (s *Server) handleRunTask(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")

	var args []string
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
			writeError(w, errs.New(errs.ConfigInvalid, "invalid args body: %v", err))
			return
		}
	}

	executionID, err := s.executeTask(r.Context(), name, id, args)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, runTaskResponse{ExecutionID: executionID})
}

// eventKindID is the SSE "id" field per event kind (spec §6.3, e.g.
// "task.started").
func eventKindID(evt domain.ExecutionEvent) string {
	isTaskScoped := evt.TaskID != ""
	switch evt.Kind {
	case domain.EventStarted:
		if isTaskScoped {
			return "task.started"
		}
		return "execution.started"
	case domain.EventCompleted:
		if isTaskScoped {
			return "task.completed"
		}
		return "execution.completed"
	case domain.EventFailed:
		if isTaskScoped {
			return "task.failed"
		}
		return "execution.failed"
	case domain.EventSkipped:
		if isTaskScoped {
			return "task.skipped"
		}
		return "execution.skipped"
	case domain.EventTaskCompleted:
		return "task.completed"
	case domain.EventOutput:
		return "task.output"
	default:
		return "event"
	}
}

func (s *Server) handleStreamExecution(w http.ResponseWriter, r *http.Request) {
	executionID := chi.URLParam(r, "executionID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, errs.New(errs.HandlerFailed, "streaming not supported by this transport"))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	sub := s.bus.Subscribe(executionID)
	defer sub.Cancel()

	for evt := range sub.Events() {
		payload := map[string]interface{}{"id": eventKindID(evt), "event": evt}
		data, err := json.Marshal(payload)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\n", data)
		flusher.Flush()

		select {
		case <-r.Context().Done():
			return
		default:
		}
	}

	if sub.Overrun() {
		s.logger.Warn("execution stream disconnected for overrun", "execution_id", executionID)
	}
}
