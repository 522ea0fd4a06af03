// Package errs defines the engine's error taxonomy. Every failure the
// core can produce is tagged with one of a closed set of kinds so that
// callers at a boundary (HTTP handlers, the plugin loader) can map it
// to a status code without string matching.
package errs

import "fmt"

// Kind is one of the taxonomy entries from the error handling design.
type Kind string

const (
	ConfigInvalid      Kind = "CONFIG_INVALID"
	PluginLoad         Kind = "PLUGIN_LOAD"
	TaskIDCollision    Kind = "TASK_ID_COLLISION"
	DependencyCycle    Kind = "DEPENDENCY_CYCLE"
	DependencyUnknown  Kind = "DEPENDENCY_UNKNOWN"
	ProjectUnknown     Kind = "PROJECT_UNKNOWN"
	TaskUnknown        Kind = "TASK_UNKNOWN"
	CommandTimeout     Kind = "COMMAND_TIMEOUT"
	CommandSpawn       Kind = "COMMAND_SPAWN"
	SubscriberOverrun  Kind = "SUBSCRIBER_OVERRUN"
	HandlerFailed      Kind = "HANDLER_FAILED"
)

// Error is the engine's tagged error type.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a tagged error with no cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an existing error with a kind.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind of err if it (or something it wraps) is an
// *Error; the zero Kind otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if asError(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// asError is a tiny errors.As to avoid importing errors just for this.
func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
