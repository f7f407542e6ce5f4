package process

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTimeout is returned by ResultHandle.Await when the command outlives its timeout.
var ErrTimeout = errors.New("process timed out")

// ExecutionError reports a command that could not be started or exited with a non-zero
// status while its Commands demanded success. ExitCode is -1 when the process never ran.
type ExecutionError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecutionError) Error() string {
	var b strings.Builder
	switch {
	case e.ExitCode >= 0:
		fmt.Fprintf(&b, "%s exited with status %d", e.Command, e.ExitCode)
	case e.Err != nil:
		fmt.Fprintf(&b, "failed to run %s", e.Command)
	default:
		fmt.Fprintf(&b, "%s was terminated by a signal", e.Command)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, "\n%s", s)
	}
	return b.String()
}

func (e *ExecutionError) Unwrap() error { return e.Err }
