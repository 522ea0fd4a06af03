// Package cli implements the thin, unstyled command-line driver of the
// engine's HTTP surface (spec §6.2; terminal rendering is explicitly
// out of scope — see SPEC_FULL.md).
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// client is a small resty-based wrapper around the engine's HTTP
// surface.
type client struct {
	http *resty.Client
}

func newClient(baseURL string) *client {
	return &client{http: resty.New().SetBaseURL(baseURL)}
}

type projectSummary struct {
	Name        string   `json:"name"`
	Directory   string   `json:"directory"`
	Tasks       []string `json:"tasks"`
	SubProjects []string `json:"sub_projects"`
}

type taskSummary struct {
	ID          string   `json:"id"`
	Phase       string   `json:"phase,omitempty"`
	DependsOn   []string `json:"depends_on,omitempty"`
	Description string   `json:"description,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *client) registerProject(name, path string) (*projectSummary, error) {
	var out projectSummary
	var errOut errorBody
	resp, err := c.http.R().
		SetBody(map[string]string{"name": name, "path": path}).
		SetResult(&out).
		SetError(&errOut).
		Post("/api/projects")
	if err != nil {
		return nil, fmt.Errorf("contacting engine: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s", errOut.Error)
	}
	return &out, nil
}

func (c *client) listTasks(project string) ([]taskSummary, error) {
	var out []taskSummary
	var errOut errorBody
	resp, err := c.http.R().
		SetResult(&out).
		SetError(&errOut).
		Get(fmt.Sprintf("/api/projects/%s/tasks", project))
	if err != nil {
		return nil, fmt.Errorf("contacting engine: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s", errOut.Error)
	}
	return out, nil
}

type runTaskResponse struct {
	ExecutionID string `json:"execution_id"`
}

func (c *client) runTask(project, taskID string, args []string) (string, error) {
	var out runTaskResponse
	var errOut errorBody
	resp, err := c.http.R().
		SetBody(args).
		SetResult(&out).
		SetError(&errOut).
		Post(fmt.Sprintf("/api/projects/%s/tasks/%s", project, taskID))
	if err != nil {
		return "", fmt.Errorf("contacting engine: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%s", errOut.Error)
	}
	return out.ExecutionID, nil
}

// streamedEvent mirrors the SSE payload shape (spec §6.3): {id, event}.
type streamedEvent struct {
	ID    string                 `json:"id"`
	Event map[string]interface{} `json:"event"`
}

// streamExecution consumes the newline-framed event stream, calling
// onEvent for each one, until the connection closes.
func (c *client) streamExecution(executionID string, onEvent func(streamedEvent)) error {
	resp, err := c.http.R().
		SetDoNotParseResponse(true).
		Get(fmt.Sprintf("/api/executions/%s", executionID))
	if err != nil {
		return fmt.Errorf("contacting engine: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		var evt streamedEvent
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			continue
		}
		onEvent(evt)
	}
	return scanner.Err()
}

func (c *client) setToken(provider, token string) error {
	var errOut errorBody
	resp, err := c.http.R().
		SetBody(map[string]string{"token": token}).
		SetError(&errOut).
		Post(fmt.Sprintf("/auth/%s", provider))
	if err != nil {
		return fmt.Errorf("contacting engine: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s", errOut.Error)
	}
	return nil
}

func (c *client) deleteToken(provider string) error {
	var errOut errorBody
	resp, err := c.http.R().SetError(&errOut).Delete(fmt.Sprintf("/auth/%s", provider))
	if err != nil {
		return fmt.Errorf("contacting engine: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s", errOut.Error)
	}
	return nil
}

type authStatusResponse struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
}

func (c *client) authStatus(provider string) (*authStatusResponse, error) {
	var out authStatusResponse
	var errOut errorBody
	resp, err := c.http.R().SetResult(&out).SetError(&errOut).Get(fmt.Sprintf("/auth/%s/status", provider))
	if err != nil {
		return nil, fmt.Errorf("contacting engine: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s", errOut.Error)
	}
	return &out, nil
}
