package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/architect-platform/architect-engine/internal/domain"
)

func TestEscapeQuotesSingleQuotes(t *testing.T) {
	require.Equal(t, `'it'\''s'`, Escape("it's"))
}

func TestEscapeIsSafeToInterpolateIntoACommand(t *testing.T) {
	c := &CommandExecutor{DefaultTimeout: 5 * time.Second}
	command := "echo " + Escape("a b 'c'")
	result, err := c.Run(context.Background(), command, domain.CommandOptions{WorkingDir: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, "a b 'c'\n", result.Stdout)
}
