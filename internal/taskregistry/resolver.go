// Package taskregistry implements the dependency resolver described in
// spec §4.3: given a project's task registry and an entry task id, it
// returns the task ids to run, in an order consistent with explicit
// depends_on edges and with phase ordering within a workflow.
package taskregistry

import (
	"sort"

	"github.com/architect-platform/architect-engine/internal/domain"
	"github.com/architect-platform/architect-engine/internal/errs"
)

// Resolve returns the ordered sequence of task ids to execute so that
// the entry task runs last, every dependency of a task (explicit or
// phase-implied) appears before it, and ties are broken by ascending
// task id.
func Resolve(registry *domain.TaskRegistry, entryTaskID string) ([]string, error) {
	tasks := registry.All()

	if _, ok := tasks[entryTaskID]; !ok {
		return nil, errs.New(errs.TaskUnknown, "task %q is not registered", entryTaskID)
	}

	// predecessors[b] = set of a such that edge a->b exists (a must
	// complete before b).
	predecessors := make(map[string]map[string]bool, len(tasks))
	for id := range tasks {
		predecessors[id] = make(map[string]bool)
	}

	addEdge := func(from, to string) {
		predecessors[to][from] = true
	}

	for id, t := range tasks {
		for _, dep := range t.DependsOn {
			if _, ok := tasks[dep]; !ok {
				return nil, errs.New(errs.DependencyUnknown,
					"task %q depends on unknown task %q", id, dep)
			}
			addEdge(dep, id)
		}
	}

	for idA, a := range tasks {
		if a.Phase == "" {
			continue
		}
		for idB, b := range tasks {
			if idA == idB || b.Phase == "" {
				continue
			}
			if domain.SamePhaseOrder(a.Phase, b.Phase) {
				addEdge(idA, idB)
			}
		}
	}

	// Ancestor closure of the entry task: every node reachable by
	// walking predecessor edges backward from entry, plus entry
	// itself.
	visited := map[string]bool{entryTaskID: true}
	frontier := []string{entryTaskID}
	for len(frontier) > 0 {
		var next []string
		for _, node := range frontier {
			for pred := range predecessors[node] {
				if !visited[pred] {
					visited[pred] = true
					next = append(next, pred)
				}
			}
		}
		frontier = next
	}

	// Kahn's algorithm restricted to the visited subgraph, with a
	// sorted ready set for deterministic tie-breaking by ascending id.
	indegree := make(map[string]int, len(visited))
	for node := range visited {
		count := 0
		for pred := range predecessors[node] {
			if visited[pred] {
				count++
			}
		}
		indegree[node] = count
	}

	successors := make(map[string][]string, len(visited))
	for node := range visited {
		for pred := range predecessors[node] {
			if visited[pred] {
				successors[pred] = append(successors[pred], node)
			}
		}
	}

	var ready []string
	for node, deg := range indegree {
		if deg == 0 {
			ready = append(ready, node)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(visited))
	for len(ready) > 0 {
		node := ready[0]
		ready = ready[1:]
		order = append(order, node)

		var newlyReady []string
		for _, succ := range successors[node] {
			indegree[succ]--
			if indegree[succ] == 0 {
				newlyReady = append(newlyReady, succ)
			}
		}
		sort.Strings(newlyReady)
		ready = mergeSorted(ready, newlyReady)
	}

	if len(order) != len(visited) {
		var remaining []string
		for node, deg := range indegree {
			if deg > 0 {
				remaining = append(remaining, node)
			}
		}
		sort.Strings(remaining)
		return nil, errs.New(errs.DependencyCycle,
			"dependency cycle detected, involving task %q", remaining[0])
	}

	return order, nil
}

// mergeSorted merges two already-sorted slices into one sorted slice.
func mergeSorted(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
