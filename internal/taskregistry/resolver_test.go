package taskregistry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/architect-platform/architect-engine/internal/domain"
	"github.com/architect-platform/architect-engine/internal/errs"
)

func handler(ctx context.Context, env domain.Environment, pctx *domain.ProjectContext, args []string) (*domain.TaskResult, error) {
	return domain.Success("ok"), nil
}

func registryWith(tasks ...*domain.Task) *domain.TaskRegistry {
	r := domain.NewTaskRegistry()
	for _, t := range tasks {
		if err := r.Add(t, "test"); err != nil {
			panic(err)
		}
	}
	return r
}

func TestResolveExplicitDependency(t *testing.T) {
	r := registryWith(
		&domain.Task{ID: "a", Handler: handler},
		&domain.Task{ID: "b", DependsOn: []string{"a"}, Handler: handler},
	)

	order, err := Resolve(r, "b")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, order)
}

func TestResolvePhaseOrderingReinforcesExplicitDependency(t *testing.T) {
	r := registryWith(
		&domain.Task{ID: "a", Phase: domain.PhaseLint, Handler: handler},
		&domain.Task{ID: "b", Phase: domain.PhaseBuild, DependsOn: []string{"a"}, Handler: handler},
	)

	order, err := Resolve(r, "b")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, order)
}

func TestResolveTieBreaksByAscendingID(t *testing.T) {
	r := registryWith(
		&domain.Task{ID: "zeta", Phase: domain.PhaseInit, Handler: handler},
		&domain.Task{ID: "alpha", Phase: domain.PhaseInit, Handler: handler},
		&domain.Task{ID: "entry", Phase: domain.PhaseLint, Handler: handler},
	)

	order, err := Resolve(r, "entry")
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "zeta", "entry"}, order)
}

func TestResolveOnlyPullsInAncestors(t *testing.T) {
	r := registryWith(
		&domain.Task{ID: "a", Handler: handler},
		&domain.Task{ID: "b", Handler: handler},
		&domain.Task{ID: "unrelated", DependsOn: []string{"b"}, Handler: handler},
	)

	order, err := Resolve(r, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, order)
}

func TestResolveUnknownEntryTask(t *testing.T) {
	r := registryWith(&domain.Task{ID: "a", Handler: handler})

	_, err := Resolve(r, "missing")
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errs.TaskUnknown, kind)
}

func TestResolveUnknownDependency(t *testing.T) {
	r := registryWith(&domain.Task{ID: "a", DependsOn: []string{"ghost"}, Handler: handler})

	_, err := Resolve(r, "a")
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errs.DependencyUnknown, kind)
}

func TestResolveDetectsCycle(t *testing.T) {
	r := registryWith(
		&domain.Task{ID: "a", DependsOn: []string{"b"}, Handler: handler},
		&domain.Task{ID: "b", DependsOn: []string{"a"}, Handler: handler},
	)

	_, err := Resolve(r, "a")
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errs.DependencyCycle, kind)
}

func TestResolveDetectsSelfDependency(t *testing.T) {
	r := registryWith(&domain.Task{ID: "a", DependsOn: []string{"a"}, Handler: handler})

	_, err := Resolve(r, "a")
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errs.DependencyCycle, kind)
}

func TestResolveTaskWithNoPhaseOrDependenciesRunsAlone(t *testing.T) {
	r := registryWith(&domain.Task{ID: "solo", Handler: handler})

	order, err := Resolve(r, "solo")
	require.NoError(t, err)
	require.Equal(t, []string{"solo"}, order)
}
