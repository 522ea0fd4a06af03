// Plugin binary demonstrating the architect-engine plugin contract: a
// single task, "run", that executes a shell command named by the
// project's plugin configuration slice.
package main

import (
	"fmt"

	"github.com/architect-platform/architect-engine/pkg/pluginsdk"
)

func main() {
	pluginsdk.Serve(&samplePlugin{})
}

type samplePlugin struct{}

func (samplePlugin) Register(req pluginsdk.RegisterRequest) (pluginsdk.RegisterResponse, error) {
	return pluginsdk.RegisterResponse{
		Tasks: []pluginsdk.TaskDescriptor{
			{ID: "run", Phase: "RUN", Description: "runs the plugin's configured shell command"},
		},
	}, nil
}

// RunTask runs the configured command through the host's command
// executor (host.RunCommand) rather than spawning it directly, so the
// call is bounded by the host's timeout and reports COMMAND_TIMEOUT /
// COMMAND_SPAWN failures instead of hanging or panicking the plugin.
func (samplePlugin) RunTask(req pluginsdk.RunTaskRequest, host pluginsdk.HostCommands) (pluginsdk.RunTaskResult, error) {
	if req.TaskID != "run" {
		return pluginsdk.RunTaskResult{}, fmt.Errorf("unknown task %q", req.TaskID)
	}

	command, _ := req.Config["command"].(string)
	if command == "" {
		return pluginsdk.RunTaskResult{Success: false, Message: "no \"command\" configured"}, nil
	}
	for _, arg := range req.Args {
		command += " " + pluginsdk.Escape(arg)
	}

	result, err := host.RunCommand(command, pluginsdk.CommandOptions{WorkingDir: req.ProjectDirectory})
	if err != nil {
		return pluginsdk.RunTaskResult{
			Success: false,
			Message: fmt.Sprintf("command failed: %v", err),
		}, nil
	}

	if result.ExitCode != 0 {
		return pluginsdk.RunTaskResult{
			Success: false,
			Message: fmt.Sprintf("command exited %d\n%s%s", result.ExitCode, result.Stdout, result.Stderr),
		}, nil
	}

	return pluginsdk.RunTaskResult{Success: true, Message: result.Stdout}, nil
}

var _ pluginsdk.Plugin = samplePlugin{}
