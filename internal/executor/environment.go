package executor

import (
	"context"
	"os"
	"path/filepath"

	"github.com/architect-platform/architect-engine/internal/domain"
)

// Environment is the default domain.Environment implementation handed
// to task handlers: a command executor rooted at the project
// directory, and a resource extractor reading from the owning
// plugin's extracted resource directory.
type Environment struct {
	cmd         *CommandExecutor
	workingDir  string
	resourceDir string
}

// NewEnvironment builds an Environment for one task invocation.
func NewEnvironment(cmd *CommandExecutor, workingDir, resourceDir string) *Environment {
	return &Environment{cmd: cmd, workingDir: workingDir, resourceDir: resourceDir}
}

func (e *Environment) RunCommand(ctx context.Context, command string, opts domain.CommandOptions) (*domain.CommandResult, error) {
	if opts.WorkingDir == "" {
		opts.WorkingDir = e.workingDir
	}
	return e.cmd.Run(ctx, command, opts)
}

func (e *Environment) ExtractResource(ctx context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(e.resourceDir, filepath.Clean(string(filepath.Separator)+name)))
}

var _ domain.Environment = (*Environment)(nil)
