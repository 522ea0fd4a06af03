package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatEventIncludesTaskIDWhenPresent(t *testing.T) {
	evt := streamedEvent{ID: "task.started", Event: map[string]interface{}{"TaskID": "build"}}
	require.Equal(t, "task.started build", formatEvent(evt))
}

func TestFormatEventOmitsTaskIDWhenAbsent(t *testing.T) {
	evt := streamedEvent{ID: "execution.completed", Event: map[string]interface{}{}}
	require.Equal(t, "execution.completed", formatEvent(evt))
}

func TestIsOverallFailureMatchesOnlyExecutionScopedFailure(t *testing.T) {
	require.True(t, isOverallFailure(streamedEvent{ID: "execution.failed", Event: map[string]interface{}{}}))
	require.False(t, isOverallFailure(streamedEvent{ID: "task.failed", Event: map[string]interface{}{"TaskID": "build"}}))
	require.False(t, isOverallFailure(streamedEvent{ID: "execution.failed", Event: map[string]interface{}{"TaskID": "build"}}))
	require.False(t, isOverallFailure(streamedEvent{ID: "execution.completed", Event: map[string]interface{}{}}))
}
