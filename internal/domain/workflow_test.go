package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSamePhaseOrderWithinCoreWorkflow(t *testing.T) {
	require.True(t, SamePhaseOrder(PhaseLint, PhaseBuild))
	require.False(t, SamePhaseOrder(PhaseBuild, PhaseLint))
	require.False(t, SamePhaseOrder(PhaseBuild, PhaseBuild))
}

func TestSamePhaseOrderAcrossWorkflowsIsFalse(t *testing.T) {
	require.False(t, SamePhaseOrder(PhaseBuild, PhasePreCommit))
	require.False(t, SamePhaseOrder(PhasePreCommit, PhaseBuild))
}

func TestSamePhaseOrderWithinHooksWorkflow(t *testing.T) {
	require.True(t, SamePhaseOrder(PhasePreCommit, PhasePrePush))
}
