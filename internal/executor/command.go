package executor

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/architect-platform/architect-engine/internal/domain"
	"github.com/architect-platform/architect-engine/internal/errs"
)

// CommandExecutor is the core's subprocess primitive (spec §4.4
// "Command executor primitive"). It runs a shell command string with
// a bounded wall-clock timeout and captures stdout/stderr.
type CommandExecutor struct {
	DefaultTimeout time.Duration
}

// Run executes command via "sh -c" in opts.WorkingDir. The only
// observable outcomes are an exit code with captured streams,
// COMMAND_TIMEOUT, or COMMAND_SPAWN (spec §8 invariant 4).
func (c *CommandExecutor) Run(ctx context.Context, command string, opts domain.CommandOptions) (*domain.CommandResult, error) {
	timeout := c.DefaultTimeout
	if opts.Timeout > 0 {
		timeout = time.Duration(opts.Timeout) * time.Second
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Dir = opts.WorkingDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if opts.RedirectStderr {
		cmd.Stderr = &stdout
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Start()
	if err != nil {
		return nil, errs.Wrap(errs.CommandSpawn, err, "failed to start command")
	}

	waitErr := cmd.Wait()

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, errs.New(errs.CommandTimeout, "command timed out after %s", timeout)
	}

	result := &domain.CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}

	if waitErr == nil {
		result.ExitCode = 0
		return result, nil
	}

	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return nil, errs.Wrap(errs.CommandSpawn, waitErr, "command failed to run")
}
