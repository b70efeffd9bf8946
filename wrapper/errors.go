package wrapper

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
)

// ErrBrokenPipe is returned when a blocking receive finds the console
// stream closed: the server process died and no more lines are coming.
// It is distinct from "no line available yet", which simply blocks.
var ErrBrokenPipe = errors.New("console stream closed: server process is gone")

// SpawnError reports a failure to launch the server process or to
// capture its stdin/stdout.
type SpawnError struct {
	Message string
	Cause   error
}

func (e *SpawnError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("spawn error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("spawn error: %s", e.Message)
}

func (e *SpawnError) Unwrap() error {
	return e.Cause
}

// ProtocolError reports a console line that did not match the shape the
// issued command expects.
type ProtocolError struct {
	Command string
	Line    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected response to %s: %q", e.Command, e.Line)
}

// ExitError reports a server process that exited with a non-zero status
// or was terminated by a signal. Code is only meaningful when Signaled
// is false.
type ExitError struct {
	Code     int
	Signaled bool
}

func (e *ExitError) Error() string {
	if e.Signaled {
		return "server process was terminated by a signal"
	}
	return fmt.Sprintf("server process exited with code %d", e.Code)
}

// RestartError reports a failed recovery: the replacement process could
// not be launched or never became ready.
type RestartError struct {
	Message string
	Cause   error
}

func (e *RestartError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("restart error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("restart error: %s", e.Message)
}

func (e *RestartError) Unwrap() error {
	return e.Cause
}

// exitErrorFrom maps the result of Cmd.Wait to an ExitError, keeping the
// signal-terminated case distinguishable from a plain non-zero exit.
func exitErrorFrom(err error) error {
	if err == nil {
		return nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if ws, ok := ee.ProcessState.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return &ExitError{Signaled: true}
		}
		return &ExitError{Code: ee.ProcessState.ExitCode()}
	}
	return fmt.Errorf("wait for server process: %w", err)
}
