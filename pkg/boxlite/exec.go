// SPDX-License-Identifier: MPL-2.0

package boxlite

import (
	"context"
	"strings"
	"sync"

	"boxlite-go/internal/backend"
)

type (
	// Stream is a finite, pull-based sequence of output chunks. Next
	// returns io.EOF once the stream ends.
	Stream = backend.Stream

	// StreamWriter accepts input for a running command; Close signals
	// end-of-input.
	StreamWriter = backend.StreamWriter

	// Command describes one command submission: a program, its ordered
	// arguments, optional environment overrides, and the PTY flag.
	Command struct {
		Program string
		Args    []string
		Env     map[string]string
		WorkDir string
		TTY     bool
	}

	// Execution represents one in-flight or completed command inside a
	// box. It is created by a single Box invocation and never reused.
	Execution struct {
		command string
		handle  backend.ExecutionHandle

		mu       sync.Mutex
		resolved bool
		status   int
	}

	// Result is the fully drained, exit-status-annotated output of a
	// non-interactive execution. It is assembled only after both output
	// streams are exhausted and the exit status is known.
	Result struct {
		// ExitCode is the command's exit status. Negative values denote
		// termination by signal.
		ExitCode int
		// Stdout is the concatenated standard-output text.
		Stdout string
		// Stderr is the concatenated standard-error text.
		Stderr string
	}
)

func newExecution(command string, handle backend.ExecutionHandle) *Execution {
	return &Execution{command: command, handle: handle}
}

// Command returns the command label this execution was created for.
func (e *Execution) Command() string { return e.command }

// Stdin returns the execution's input stream. The backend may not expose
// one; absence is a valid state, not an error.
func (e *Execution) Stdin() (StreamWriter, bool) { return e.handle.Stdin() }

// Stdout returns the execution's standard-output stream, if exposed.
func (e *Execution) Stdout() (Stream, bool) { return e.handle.Stdout() }

// Stderr returns the execution's standard-error stream, if exposed. PTY
// executions typically merge stderr into stdout and expose none.
func (e *Execution) Stderr() (Stream, bool) { return e.handle.Stderr() }

// Wait blocks until the command exits and returns its status. The status
// is cached once observed, so repeated calls return immediately. A
// nonzero status is data, not an error.
func (e *Execution) Wait(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resolved {
		return e.status, nil
	}

	status, err := e.handle.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &BackendError{Op: "wait for " + e.command, Err: err}
	}

	e.status = int(status)
	e.resolved = true
	return e.status, nil
}

// Collect drains the execution's output streams and awaits its exit,
// returning the aggregated result. The two streams are drained
// independently and may interleave in time; each stream's own order is
// preserved. A missing stream contributes empty text. Stream read errors
// are treated as the stream ending early. Collect never returns a partial
// result: both drains and the exit status must be in hand first.
func (e *Execution) Collect(ctx context.Context) (*Result, error) {
	var (
		wg     sync.WaitGroup
		stdout strings.Builder
		stderr strings.Builder
	)

	if stream, ok := e.handle.Stdout(); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			drain(ctx, stream, &stdout)
		}()
	}
	if stream, ok := e.handle.Stderr(); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			drain(ctx, stream, &stderr)
		}()
	}

	status, err := e.Wait(ctx)
	wg.Wait()
	if err != nil {
		return nil, err
	}

	return &Result{
		ExitCode: status,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// drain appends a stream's chunks to buf until end-of-stream or error.
// Errors end the drain silently: a stream that dies mid-read contributes
// whatever arrived before.
func drain(ctx context.Context, stream Stream, buf *strings.Builder) {
	for {
		chunk, err := stream.Next(ctx)
		if len(chunk) > 0 {
			buf.Write(chunk)
		}
		if err != nil {
			return
		}
	}
}
