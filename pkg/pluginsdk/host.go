package pluginsdk

import (
	"errors"
	"net/rpc"
)

// CommandOptions is the RPC-safe mirror of domain.CommandOptions: a
// plugin cannot carry a context.Context or a live domain.Environment
// across the process boundary, so a RunCommand call back into the
// host only ever sees plain data.
type CommandOptions struct {
	WorkingDir     string
	Timeout        int64 // seconds; 0 means the host's configured default
	RedirectStderr bool
}

// CommandResult mirrors domain.CommandResult.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// HostCommands is the bounded callback surface a plugin holds during
// a single RunTask call: the host's command-executor primitive (spec
// §4.4 "Command executor primitive", invariant §8.4) and resource
// extraction, both still running with the host's timeout and
// COMMAND_TIMEOUT/COMMAND_SPAWN semantics even though the caller is
// out-of-process.
type HostCommands interface {
	RunCommand(command string, opts CommandOptions) (CommandResult, error)
	ExtractResource(name string) ([]byte, error)
}

type commandRequest struct {
	Command string
	Options CommandOptions
}

// hostCommandServer runs in the host process and is dialed by the
// plugin over the same go-plugin MuxBroker used for the top-level
// Plugin dispense, following the teacher's HostClient/broker pattern
// (pkg/plugin/grpc.go's Configure-time broker.Dial) adapted to the
// net/rpc transport.
type hostCommandServer struct {
	impl HostCommands
}

func (s *hostCommandServer) RunCommand(req commandRequest, resp *CommandResult) error {
	r, err := s.impl.RunCommand(req.Command, req.Options)
	if err != nil {
		return err
	}
	*resp = r
	return nil
}

func (s *hostCommandServer) ExtractResource(name string, resp *[]byte) error {
	b, err := s.impl.ExtractResource(name)
	if err != nil {
		return err
	}
	*resp = b
	return nil
}

// hostCommandClient runs in the plugin process and forwards calls to
// hostCommandServer over the broker-dialed connection.
type hostCommandClient struct {
	client *rpc.Client
}

func (c *hostCommandClient) RunCommand(command string, opts CommandOptions) (CommandResult, error) {
	var resp CommandResult
	err := c.client.Call("HostCommands.RunCommand", commandRequest{Command: command, Options: opts}, &resp)
	return resp, err
}

func (c *hostCommandClient) ExtractResource(name string) ([]byte, error) {
	var resp []byte
	err := c.client.Call("HostCommands.ExtractResource", name, &resp)
	return resp, err
}

// noopHostCommands is handed to a plugin when the host did not offer
// a command callback for a given RunTask call (e.g. a unit test
// driving a Plugin implementation directly).
type noopHostCommands struct{}

func (noopHostCommands) RunCommand(string, CommandOptions) (CommandResult, error) {
	return CommandResult{}, errors.New("no host command service available for this call")
}

func (noopHostCommands) ExtractResource(string) ([]byte, error) {
	return nil, errors.New("no host command service available for this call")
}
