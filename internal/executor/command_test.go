package executor

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/architect-platform/architect-engine/internal/domain"
	"github.com/architect-platform/architect-engine/internal/errs"
)

func TestCommandExecutorRunCapturesExitCodeAndStdout(t *testing.T) {
	c := &CommandExecutor{DefaultTimeout: 5 * time.Second}
	result, err := c.Run(context.Background(), "echo hello", domain.CommandOptions{WorkingDir: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, 0, result.ExitCode)
	require.Equal(t, "hello\n", result.Stdout)
}

func TestCommandExecutorRunCapturesNonZeroExitCode(t *testing.T) {
	c := &CommandExecutor{DefaultTimeout: 5 * time.Second}
	result, err := c.Run(context.Background(), "exit 3", domain.CommandOptions{WorkingDir: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, 3, result.ExitCode)
}

func TestCommandExecutorRunRedirectsStderrWhenRequested(t *testing.T) {
	c := &CommandExecutor{DefaultTimeout: 5 * time.Second}
	result, err := c.Run(context.Background(), "echo oops 1>&2", domain.CommandOptions{
		WorkingDir:     t.TempDir(),
		RedirectStderr: true,
	})
	require.NoError(t, err)
	require.Equal(t, "oops\n", result.Stdout)
	require.Empty(t, result.Stderr)
}

func TestCommandExecutorRunTimesOutOnSlowCommand(t *testing.T) {
	c := &CommandExecutor{DefaultTimeout: 5 * time.Second}
	_, err := c.Run(context.Background(), "sleep 5", domain.CommandOptions{
		WorkingDir: t.TempDir(),
		Timeout:    1,
	})
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errs.CommandTimeout, kind)
}

func TestCommandExecutorRunReportsSpawnFailureOnBadWorkingDir(t *testing.T) {
	c := &CommandExecutor{DefaultTimeout: 5 * time.Second}
	_, err := c.Run(context.Background(), "echo hi", domain.CommandOptions{
		WorkingDir: filepath.Join(t.TempDir(), "does-not-exist"),
	})
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errs.CommandSpawn, kind)
}

func TestCommandExecutorRunDefaultsTimeoutWhenUnset(t *testing.T) {
	c := &CommandExecutor{}
	result, err := c.Run(context.Background(), "echo default", domain.CommandOptions{WorkingDir: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, "default\n", result.Stdout)
}
