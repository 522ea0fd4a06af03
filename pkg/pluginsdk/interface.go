// Package pluginsdk is what a plugin executable imports to implement
// the engine's plugin contract (spec §4.2 "Plugins"). A plugin is a
// separate process speaking hashicorp/go-plugin's net/rpc transport;
// this package hides the RPC plumbing behind two plain methods.
package pluginsdk

// TaskDescriptor is the wire form of a task a plugin contributes to a
// project, decoded into a domain.Task by the host after Register
// returns (spec §4.2 "Task registration").
type TaskDescriptor struct {
	ID          string
	Phase       string
	DependsOn   []string
	Description string
}

// RegisterRequest carries the project the plugin is being attached to
// and its already-decoded plugin-specific configuration.
type RegisterRequest struct {
	ProjectName string
	Config      map[string]interface{}
}

// RegisterResponse is the set of tasks the plugin contributes.
type RegisterResponse struct {
	Tasks []TaskDescriptor
}

// RunTaskRequest carries everything a plugin needs to run one of its
// own tasks out-of-process: no live Environment/ProjectContext value
// crosses the RPC boundary, so the plugin re-derives what it needs
// from plain data. HostServerID, when non-zero, is a go-plugin
// MuxBroker id the plugin must dial to reach a HostCommands service
// bound to the host's Environment for this call (spec §4.4 "Command
// executor primitive" crossing the plugin boundary).
type RunTaskRequest struct {
	TaskID           string
	Args             []string
	ProjectName      string
	ProjectDirectory string
	Config           map[string]interface{}
	HostServerID     uint32
}

// RunTaskResult mirrors domain.TaskResult in an RPC-serializable
// shape (no methods, no interfaces).
type RunTaskResult struct {
	Success    bool
	Message    string
	SubResults []RunTaskResult
}

// Plugin is the interface every architect-engine plugin implements.
type Plugin interface {
	// Register returns the tasks this plugin contributes to a project.
	// Called once when the project is loaded.
	Register(req RegisterRequest) (RegisterResponse, error)

	// RunTask executes one previously registered task id. host is the
	// caller's bounded command-execution/resource-extraction callback
	// (spec §4.4); it is never nil, but is a no-op stub when the
	// caller did not offer one.
	RunTask(req RunTaskRequest, host HostCommands) (RunTaskResult, error)
}
