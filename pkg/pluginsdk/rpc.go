package pluginsdk

import (
	"fmt"
	"net/rpc"

	goplugin "github.com/hashicorp/go-plugin"
)

// RPCServer is the net/rpc-compatible wrapper the host calls into
// inside the plugin process. Every exported method has the
// (arg, *reply) error shape net/rpc requires.
type RPCServer struct {
	Impl   Plugin
	broker *goplugin.MuxBroker
}

func (s *RPCServer) Register(req RegisterRequest, resp *RegisterResponse) error {
	r, err := s.Impl.Register(req)
	*resp = r
	return err
}

// RunTask dials back into the host's HostCommands service (when the
// host offered one via req.HostServerID) before handing control to
// the plugin implementation, so RunCommand/ExtractResource calls made
// from inside the plugin still go through the host's bounded command
// executor (spec §4.4 invariant §8.4) instead of the plugin shelling
// out unsupervised.
func (s *RPCServer) RunTask(req RunTaskRequest, resp *RunTaskResult) error {
	host := HostCommands(noopHostCommands{})
	if req.HostServerID != 0 {
		conn, err := s.broker.Dial(req.HostServerID)
		if err != nil {
			return fmt.Errorf("failed to dial host command service: %w", err)
		}
		client := rpc.NewClient(conn)
		defer client.Close()
		host = &hostCommandClient{client: client}
	}

	r, err := s.Impl.RunTask(req, host)
	*resp = r
	return err
}

// RPCClient is what the host holds after dispensing the plugin; it
// implements Plugin by round-tripping each call over net/rpc.
type RPCClient struct {
	client *rpc.Client
	broker *goplugin.MuxBroker
}

func (c *RPCClient) Register(req RegisterRequest) (RegisterResponse, error) {
	var resp RegisterResponse
	err := c.client.Call("Plugin.Register", req, &resp)
	return resp, err
}

// RunTask offers host as a HostCommands service on a fresh broker id
// for the duration of this call, following the teacher's
// Configure-time HostClient/broker pattern (pkg/plugin/grpc.go,
// internal/plugin/host_server.go) adapted to a per-call callback over
// the net/rpc transport rather than gRPC.
func (c *RPCClient) RunTask(req RunTaskRequest, host HostCommands) (RunTaskResult, error) {
	var resp RunTaskResult
	if host == nil {
		err := c.client.Call("Plugin.RunTask", req, &resp)
		return resp, err
	}

	id := c.broker.NextId()
	req.HostServerID = id
	go c.serveHost(id, host)

	err := c.client.Call("Plugin.RunTask", req, &resp)
	return resp, err
}

func (c *RPCClient) serveHost(id uint32, host HostCommands) {
	conn, err := c.broker.Accept(id)
	if err != nil {
		return
	}
	server := rpc.NewServer()
	_ = server.RegisterName("HostCommands", &hostCommandServer{impl: host})
	server.ServeConn(conn)
}

// GoPlugin adapts Plugin to hashicorp/go-plugin's plugin.Plugin
// interface over the net/rpc transport (no gRPC, no protobuf codegen
// — see DESIGN.md "Dropped teacher code").
type GoPlugin struct {
	Impl Plugin
}

func (p *GoPlugin) Server(b *goplugin.MuxBroker) (interface{}, error) {
	return &RPCServer{Impl: p.Impl, broker: b}, nil
}

func (p *GoPlugin) Client(b *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RPCClient{client: c, broker: b}, nil
}
