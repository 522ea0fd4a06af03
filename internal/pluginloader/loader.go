// Package pluginloader orchestrates plugin sources, discovers the
// task(s) each plugin contributes, binds its configuration slice, and
// wires its tasks into a project's task registry (spec §4.2 "Plugin
// loader").
package pluginloader

import (
	"context"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/architect-platform/architect-engine/internal/domain"
	"github.com/architect-platform/architect-engine/internal/errs"
	"github.com/architect-platform/architect-engine/internal/pluginsource"
	"github.com/architect-platform/architect-engine/pkg/pluginsdk"
)

// Loader loads the plugins declared by a project's configuration.
type Loader struct {
	sources *pluginsource.Registry
	logger  hclog.Logger
}

// New builds a Loader over the given source registry.
func New(sources *pluginsource.Registry, logger hclog.Logger) *Loader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Loader{sources: sources, logger: logger}
}

// handle keeps the running plugin process alive for the project's
// lifetime, so its tasks can be invoked repeatedly.
type handle struct {
	client *goplugin.Client
	impl   pluginsdk.Plugin
}

// LoadAll resolves, starts, and registers every plugin declared on
// proj, in declaration order. The first failure aborts the whole load
// and any plugin processes already started are killed (spec §4.1
// "Binding failure ... aborts the project's registration").
func (l *Loader) LoadAll(proj *domain.Project) error {
	var handles []*handle
	abort := func(err error) error {
		for _, h := range handles {
			h.client.Kill()
		}
		return err
	}

	for _, descriptor := range proj.Plugins() {
		h, err := l.start(descriptor)
		if err != nil {
			return abort(err)
		}
		handles = append(handles, h)

		contextSlice, _ := proj.Config()[descriptor.PluginID].(map[string]interface{})

		resp, err := h.impl.Register(pluginsdk.RegisterRequest{
			ProjectName: proj.Name,
			Config:      contextSlice,
		})
		if err != nil {
			return abort(errs.Wrap(errs.PluginLoad, err, "plugin %q failed to register", descriptor.PluginID))
		}

		for _, td := range resp.Tasks {
			task := &domain.Task{
				ID:          td.ID,
				Phase:       domain.Phase(td.Phase),
				DependsOn:   td.DependsOn,
				Description: td.Description,
				Handler:     handlerFor(h.impl, td.ID, descriptor.PluginID, contextSlice),
			}
			if err := proj.Tasks().Add(task, descriptor.PluginID); err != nil {
				return abort(err)
			}
		}

		l.logger.Info("plugin loaded", "plugin_id", descriptor.PluginID, "project", proj.Name, "tasks", len(resp.Tasks))
	}

	return nil
}

func (l *Loader) start(descriptor domain.PluginDescriptor) (*handle, error) {
	path, err := l.sources.Resolve(descriptor)
	if err != nil {
		return nil, err
	}

	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  pluginsdk.Handshake,
		Plugins:          map[string]goplugin.Plugin{pluginsdk.Name: &pluginsdk.GoPlugin{}},
		Cmd:              exec.Command(path),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           l.logger.Named(descriptor.PluginID),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, errs.Wrap(errs.PluginLoad, err, "failed to connect to plugin %q", descriptor.PluginID)
	}

	raw, err := rpcClient.Dispense(pluginsdk.Name)
	if err != nil {
		client.Kill()
		return nil, errs.Wrap(errs.PluginLoad, err, "failed to dispense plugin %q", descriptor.PluginID)
	}

	impl, ok := raw.(pluginsdk.Plugin)
	if !ok {
		client.Kill()
		return nil, errs.New(errs.PluginLoad, "plugin %q does not implement the plugin contract", descriptor.PluginID)
	}

	return &handle{client: client, impl: impl}, nil
}

// handlerFor adapts a plugin's out-of-process RunTask into a
// domain.TaskHandler. The live Environment itself is not forwarded
// across the process boundary, but it is exposed to the plugin as a
// HostCommands callback over the go-plugin broker, so RunCommand and
// ExtractResource calls made from inside the plugin still run through
// the host's bounded command executor (spec §4.4 invariant §8.4).
func handlerFor(impl pluginsdk.Plugin, taskID, pluginID string, config map[string]interface{}) domain.TaskHandler {
	return func(ctx context.Context, env domain.Environment, pctx *domain.ProjectContext, args []string) (*domain.TaskResult, error) {
		resp, err := impl.RunTask(pluginsdk.RunTaskRequest{
			TaskID:           taskID,
			Args:             args,
			ProjectName:      pctx.Name,
			ProjectDirectory: pctx.Directory,
			Config:           config,
		}, envHostCommands{env: env})
		if err != nil {
			return nil, errs.Wrap(errs.HandlerFailed, err, "plugin %q task %q failed", pluginID, taskID)
		}
		return convertResult(resp), nil
	}
}

// envHostCommands adapts a domain.Environment to pluginsdk.HostCommands
// so it can be served back to a plugin over the broker. It runs on the
// host side of the RPC boundary, so it still has a real
// domain.Environment to call into; only the wire shape is flattened to
// plain data. Calls are detached from any per-execution cancellation
// signal, the same way invokeHandler detaches a running task handler
// (spec §4.4 "Cancellation") — the command executor's own bounded
// timeout is what bounds these calls.
type envHostCommands struct {
	env domain.Environment
}

func (h envHostCommands) RunCommand(command string, opts pluginsdk.CommandOptions) (pluginsdk.CommandResult, error) {
	result, err := h.env.RunCommand(context.Background(), command, domain.CommandOptions{
		WorkingDir:     opts.WorkingDir,
		Timeout:        opts.Timeout,
		RedirectStderr: opts.RedirectStderr,
	})
	if err != nil {
		return pluginsdk.CommandResult{}, err
	}
	return pluginsdk.CommandResult{ExitCode: result.ExitCode, Stdout: result.Stdout, Stderr: result.Stderr}, nil
}

func (h envHostCommands) ExtractResource(name string) ([]byte, error) {
	return h.env.ExtractResource(context.Background(), name)
}

func convertResult(r pluginsdk.RunTaskResult) *domain.TaskResult {
	sub := make([]*domain.TaskResult, 0, len(r.SubResults))
	for _, s := range r.SubResults {
		sub = append(sub, convertResult(s))
	}
	return &domain.TaskResult{Success: r.Success, Message: r.Message, SubResults: sub}
}
