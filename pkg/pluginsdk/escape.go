package pluginsdk

import "strings"

// Escape renders s as a single POSIX shell word, safe to interpolate
// into a command string passed to HostCommands.RunCommand. Plugins
// building a command from task arguments or config values must quote
// them this way themselves; RunCommand does not re-escape (spec §4.4
// "Command executor primitive").
func Escape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
