// SPDX-License-Identifier: MPL-2.0

package boxlite

import (
	"errors"
	"fmt"
	"time"
)

// ErrBoxlite is the root of the SDK's error taxonomy. Every error the SDK
// raises wraps it, so errors.Is(err, ErrBoxlite) matches any SDK failure
// regardless of kind.
var ErrBoxlite = errors.New("boxlite")

var (
	// ErrExec is the sentinel wrapped by ExecError.
	ErrExec = fmt.Errorf("%w: command failed", ErrBoxlite)

	// ErrTimeout is the sentinel wrapped by TimeoutError.
	ErrTimeout = fmt.Errorf("%w: deadline exceeded", ErrBoxlite)

	// ErrParse is the sentinel wrapped by ParseError.
	ErrParse = fmt.Errorf("%w: unparseable command output", ErrBoxlite)

	// ErrBackend is the sentinel wrapped by BackendError.
	ErrBackend = fmt.Errorf("%w: backend failure", ErrBoxlite)

	// ErrNotReady is returned by synchronous accessors that require a
	// materialized box, such as Box.ID before the first execution.
	ErrNotReady = fmt.Errorf("%w: box not materialized", ErrBoxlite)

	// ErrStopped is returned when an operation is attempted on a handle
	// whose box has already been stopped.
	ErrStopped = fmt.Errorf("%w: box already stopped", ErrBoxlite)
)

// ExecError reports a command that exited with a nonzero status. It is
// raised only by convenience methods that enforce success (Box.Output);
// the raw execution contract reports exit status as data.
type ExecError struct {
	// Command is the command label, program plus arguments.
	Command string
	// ExitCode is the observed exit status. Negative values denote
	// termination by signal.
	ExitCode int
	// Stderr is the captured standard-error text, if any.
	Stderr string
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExecError) Unwrap() error { return ErrExec }

// TimeoutError reports a bounded wait that exceeded its deadline.
type TimeoutError struct {
	// Waiting describes what was being awaited.
	Waiting string
	// Timeout is the deadline that was exceeded.
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.Waiting)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// ParseError reports command output that could not be parsed into the
// expected structured value. Raw carries the text that failed to parse so
// callers can build an actionable message without re-running the command.
type ParseError struct {
	// What describes the value that was expected.
	What string
	// Raw is the text that failed to parse.
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s from %q", e.What, e.Raw)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// BackendError reports a failure originating from the external runtime:
// box creation rejected, exec submission failed, unexpected stream loss.
type BackendError struct {
	// Op is the operation that failed (e.g. "create box", "exec").
	Op string
	// Err is the underlying backend error.
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() []error { return []error{ErrBackend, e.Err} }
