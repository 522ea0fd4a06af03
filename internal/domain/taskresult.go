package domain

import (
	"fmt"
	"strings"
)

// TaskResult is a success/failure tree returned by a handler. A
// result is failed iff Success is false or any transitive sub-result
// is failed.
type TaskResult struct {
	Success    bool
	Message    string
	SubResults []*TaskResult
}

// Success builds a leaf success result.
func Success(message string) *TaskResult {
	return &TaskResult{Success: true, Message: message}
}

// Failure builds a leaf failure result.
func Failure(message string) *TaskResult {
	return &TaskResult{Success: false, Message: message}
}

// Failed reports whether r or any of its sub-results failed.
func (r *TaskResult) Failed() bool {
	if r == nil {
		return false
	}
	if !r.Success {
		return true
	}
	for _, sub := range r.SubResults {
		if sub.Failed() {
			return true
		}
	}
	return false
}

// Render renders the tree as a labelled indented text tree.
func (r *TaskResult) Render() string {
	var b strings.Builder
	r.render(&b, 0)
	return b.String()
}

func (r *TaskResult) render(b *strings.Builder, depth int) {
	label := "ok"
	if !r.Success {
		label = "fail"
	}
	fmt.Fprintf(b, "%s[%s] %s\n", strings.Repeat("  ", depth), label, r.Message)
	for _, sub := range r.SubResults {
		sub.render(b, depth+1)
	}
}

// ParseVerdict is the inverse of Render for the purpose of spec's
// round-trip law (b): it only needs to recover the success verdict at
// every node, not the full tree structure, so it reads the bracketed
// label off each line.
func ParseVerdict(rendered string) []bool {
	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	verdicts := make([]bool, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		verdicts = append(verdicts, strings.HasPrefix(trimmed, "[ok]"))
	}
	return verdicts
}
