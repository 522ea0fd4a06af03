package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/architect-platform/architect-engine/internal/credentials"
	"github.com/architect-platform/architect-engine/internal/domain"
	"github.com/architect-platform/architect-engine/internal/errs"
	"github.com/architect-platform/architect-engine/internal/eventbus"
)

type fakeRegistry struct {
	projects map[string]*domain.Project
}

func newFakeRegistry() *fakeRegistry { return &fakeRegistry{projects: map[string]*domain.Project{}} }

func (f *fakeRegistry) RegisterProject(name, directory string) (*domain.Project, error) {
	p := domain.NewProject(name, directory, map[string]interface{}{})
	f.projects[name] = p
	return p, nil
}

func (f *fakeRegistry) GetProject(name string) (*domain.Project, bool) {
	p, ok := f.projects[name]
	return p, ok
}

func (f *fakeRegistry) ListProjects() []*domain.Project {
	out := make([]*domain.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out
}

func newTestServer(t *testing.T) (*Server, *fakeRegistry, *eventbus.Bus) {
	registry := newFakeRegistry()
	bus := eventbus.New(64, 64, nil)
	creds, _ := credentials.Open(filepath.Join(t.TempDir(), "architect-test-creds.yml"))
	exec := func(ctx context.Context, projectName, taskID string, args []string) (string, error) {
		if _, ok := registry.GetProject(projectName); !ok {
			return "", errs.New(errs.ProjectUnknown, "unknown")
		}
		return "exec-123", nil
	}
	s := New(registry, exec, bus, creds, nil)
	return s, registry, bus
}

func TestHandleRegisterProjectAndGet(t *testing.T) {
	s, _, _ := newTestServer(t)

	body := strings.NewReader(`{"name":"p","path":"/tmp/p"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/projects/", body)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/projects/p", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary projectSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, "p", summary.Name)
}

func TestHandleGetProjectUnknownReturns404(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/ghost", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleListTasks(t *testing.T) {
	s, registry, _ := newTestServer(t)
	proj, err := registry.RegisterProject("p", "/tmp/p")
	require.NoError(t, err)
	require.NoError(t, proj.Tasks().Add(&domain.Task{ID: "build", Phase: domain.PhaseBuild, Handler: noopHandlerForTest}, "plugin"))

	req := httptest.NewRequest(http.MethodGet, "/api/projects/p/tasks", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []taskSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	require.Equal(t, "build", tasks[0].ID)
}

func TestHandleRunTaskReturnsExecutionID(t *testing.T) {
	s, registry, _ := newTestServer(t)
	_, err := registry.RegisterProject("p", "/tmp/p")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/projects/p/tasks/build", strings.NewReader(`["--flag"]`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp runTaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "exec-123", resp.ExecutionID)
}

func TestHandleRunTaskUnknownProjectReturns404(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/projects/ghost/tasks/build", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleStreamExecutionEmitsNDJSONLines(t *testing.T) {
	s, _, bus := newTestServer(t)

	bus.Emit("exec-1", domain.ExecutionEvent{Kind: domain.EventStarted, TaskID: "build"})
	bus.Emit("exec-1", domain.ExecutionEvent{Kind: domain.EventCompleted})
	bus.Close("exec-1")

	req := httptest.NewRequest(http.MethodGet, "/api/executions/exec-1", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

	scanner := bufio.NewScanner(rec.Body)
	var lines []map[string]interface{}
	for scanner.Scan() {
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 2)
	require.Equal(t, "task.started", lines[0]["id"])
	require.Equal(t, "execution.completed", lines[1]["id"])
}

func TestAuthSetStatusDelete(t *testing.T) {
	s, _, _ := newTestServer(t)

	body := strings.NewReader(`{"token":"abc123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/github/", body)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/github/status", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var status authStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.True(t, status.Configured)

	req = httptest.NewRequest(http.MethodDelete, "/auth/github/", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/github/status", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	var status2 authStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status2))
	require.False(t, status2.Configured)
}

func noopHandlerForTest(ctx context.Context, env domain.Environment, pctx *domain.ProjectContext, args []string) (*domain.TaskResult, error) {
	return domain.Success("ok"), nil
}
