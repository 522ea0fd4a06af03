package domain

// Phase is a named stage in a fixed ordered sequence. A task's phase
// contributes an implicit ordering constraint: every task in phase
// P_i must complete before any task in phase P_j when i < j within
// the same workflow.
type Phase string

// Workflow is a closed, ordered sequence of phases.
type Workflow struct {
	Name   string
	Phases []Phase
}

// Core workflow phases.
const (
	PhaseInit    Phase = "INIT"
	PhaseLint    Phase = "LINT"
	PhaseVerify  Phase = "VERIFY"
	PhaseBuild   Phase = "BUILD"
	PhaseTest    Phase = "TEST"
	PhaseRun     Phase = "RUN"
	PhaseRelease Phase = "RELEASE"
	PhasePublish Phase = "PUBLISH"
)

// Hooks workflow phases.
const (
	PhasePreCommit        Phase = "PRE_COMMIT"
	PhasePrepareCommitMsg Phase = "PREPARE_COMMIT_MSG"
	PhaseCommitMsg        Phase = "COMMIT_MSG"
	PhasePostCommit       Phase = "POST_COMMIT"
	PhasePrePush          Phase = "PRE_PUSH"
)

// CoreWorkflow is the canonical build/release pipeline.
var CoreWorkflow = Workflow{
	Name: "core",
	Phases: []Phase{
		PhaseInit, PhaseLint, PhaseVerify, PhaseBuild, PhaseTest, PhaseRun, PhaseRelease, PhasePublish,
	},
}

// HooksWorkflow is the canonical git-hooks pipeline.
var HooksWorkflow = Workflow{
	Name: "hooks",
	Phases: []Phase{
		PhasePreCommit, PhasePrepareCommitMsg, PhaseCommitMsg, PhasePostCommit, PhasePrePush,
	},
}

// Workflows lists every closed phase set a task's phase may belong to.
var Workflows = []Workflow{CoreWorkflow, HooksWorkflow}

// workflowOf returns the workflow containing phase p and p's ordinal
// index within it. ok is false if p belongs to no known workflow.
func workflowOf(p Phase) (wf Workflow, index int, ok bool) {
	for _, w := range Workflows {
		for i, ph := range w.Phases {
			if ph == p {
				return w, i, true
			}
		}
	}
	return Workflow{}, -1, false
}

// SamePhaseOrder reports whether a and b belong to the same workflow
// and a's phase strictly precedes b's phase within it. Used to derive
// the implicit phase edges in the dependency graph (spec §4.3 step 1b).
func SamePhaseOrder(a, b Phase) bool {
	wfA, idxA, okA := workflowOf(a)
	wfB, idxB, okB := workflowOf(b)
	if !okA || !okB || wfA.Name != wfB.Name {
		return false
	}
	return idxA < idxB
}
