// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"

	"boxlite-go/internal/backend"
)

// execution is one engine exec process. It implements
// backend.ExecutionHandle.
type execution struct {
	cmd *exec.Cmd

	stdin  backend.StreamWriter // nil when the backend exposes no input
	stdout *pump                // nil when the backend exposes no stdout
	stderr *pump                // nil when the backend exposes no stderr

	ptmx *os.File // PTY master, nil for pipe-backed execs

	waitOnce sync.Once
	done     chan struct{}
	status   backend.ExitStatus
	waitErr  error
}

// startPipeExecution starts cmd with pump-backed stdout/stderr and a stdin
// pipe. The pumps are plain io.Writer sinks, so exec.Cmd's own copy
// goroutines feed them; Wait closes them once the process and its copies
// are finished.
func startPipeExecution(cmd *exec.Cmd) (*execution, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout := newPump()
	stderr := newPump()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, err
	}

	return &execution{
		cmd:    cmd,
		stdin:  &pipeWriter{stdin},
		stdout: stdout,
		stderr: stderr,
		done:   make(chan struct{}),
	}, nil
}

// startPTYExecution starts cmd attached to a freshly allocated PTY. The
// PTY merges the process's output streams, so the execution exposes a
// combined stdout and no stderr.
func startPTYExecution(cmd *exec.Cmd, ptmx *os.File) *execution {
	stdout := newPump()
	go stdout.pumpFrom(ptmx)

	return &execution{
		cmd:    cmd,
		stdin:  &ptyWriter{f: ptmx},
		stdout: stdout,
		ptmx:   ptmx,
		done:   make(chan struct{}),
	}
}

func (e *execution) Stdin() (backend.StreamWriter, bool) {
	return e.stdin, e.stdin != nil
}

func (e *execution) Stdout() (backend.Stream, bool) {
	if e.stdout == nil {
		return nil, false
	}
	return e.stdout, true
}

func (e *execution) Stderr() (backend.Stream, bool) {
	if e.stderr == nil {
		return nil, false
	}
	return e.stderr, true
}

// Resize implements backend.Resizer for PTY-backed executions.
func (e *execution) Resize(rows, cols int) error {
	if e.ptmx == nil {
		return errors.New("resize: execution has no pty")
	}
	return resizePTY(e.ptmx, rows, cols)
}

// Wait blocks until the process exits or the context is cancelled. The
// underlying wait runs once regardless of how many callers block here.
func (e *execution) Wait(ctx context.Context) (backend.ExitStatus, error) {
	e.waitOnce.Do(func() {
		go e.reap()
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-e.done:
		return e.status, e.waitErr
	}
}

// reap waits for the process, releases stream resources, and records the
// exit status. Exit-code failures are status, not errors.
func (e *execution) reap() {
	err := e.cmd.Wait()

	if e.ptmx != nil {
		// Unblocks the PTY reader goroutine with EIO, which ends the
		// stdout stream.
		_ = e.ptmx.Close()
	}
	if e.stdout != nil {
		e.stdout.closeSend()
	}
	if e.stderr != nil {
		e.stderr.closeSend()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			e.status = exitStatus(exitErr.ProcessState)
		} else {
			e.waitErr = err
		}
	}
	close(e.done)
}
