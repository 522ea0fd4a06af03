package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskResultFailedPropagatesFromSubResults(t *testing.T) {
	leaf := Failure("boom")
	root := Success("parent")
	root.SubResults = []*TaskResult{Success("sibling"), leaf}

	require.True(t, root.Failed())
	require.False(t, Success("ok").Failed())
}

func TestTaskResultRenderParseVerdictRoundTrip(t *testing.T) {
	root := Success("build")
	root.SubResults = []*TaskResult{
		Success("compile"),
		Failure("lint"),
		{Success: true, Message: "nested", SubResults: []*TaskResult{Failure("deep")}},
	}

	rendered := root.Render()
	verdicts := ParseVerdict(rendered)

	require.Equal(t, []bool{true, true, false, true, false}, verdicts)
}

func TestTaskResultRenderLabelsFailureNode(t *testing.T) {
	rendered := Failure("broke").Render()
	require.Equal(t, "[fail] broke\n", rendered)
}
