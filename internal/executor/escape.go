package executor

import "strings"

// Escape renders s as a single POSIX shell word, safe to interpolate
// into a command string run through CommandExecutor.Run. Arguments
// and environment variables passed through the command executor
// primitive must be escaped by the caller; the primitive itself does
// not re-escape (spec §4.4 "Command executor primitive").
func Escape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
