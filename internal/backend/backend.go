// SPDX-License-Identifier: MPL-2.0

// Package backend defines the runtime boundary consumed by the boxlite SDK:
// box creation, command execution, and pull-based stream primitives. The SDK
// treats implementations of these interfaces as a black box; the reference
// implementation in internal/backend/cli drives a Docker or Podman binary.
package backend

import (
	"context"
	"time"
)

// Runtime creates and looks up boxes.
type Runtime interface {
	// CreateBox materializes a new box from the given configuration.
	// The returned handle owns the box until Stop is called.
	CreateBox(ctx context.Context, cfg BoxConfig) (BoxHandle, error)

	// Lookup finds a live box by name. The boolean reports whether a box
	// with that name exists; a false return is not an error.
	Lookup(ctx context.Context, name string) (BoxHandle, bool, error)
}

// BoxHandle is one live box.
type BoxHandle interface {
	// ID returns the box's unique identifier.
	ID() string

	// Info returns box metadata.
	Info(ctx context.Context) (BoxInfo, error)

	// Exec submits a command to the box and returns a handle to the
	// in-flight execution.
	Exec(ctx context.Context, spec ExecSpec) (ExecutionHandle, error)

	// Stop tears the box down. When remove is true the box's persisted
	// state is purged as well. Stop on an already-stopped box is a no-op.
	Stop(ctx context.Context, remove bool) error
}

// ExecutionHandle is one in-flight or completed command inside a box.
//
// Stream accessors return ok=false when the backend does not expose that
// stream for this execution (a PTY exec, for example, has no separate
// stderr). Callers must treat absence as an empty contribution.
type ExecutionHandle interface {
	Stdin() (StreamWriter, bool)
	Stdout() (Stream, bool)
	Stderr() (Stream, bool)

	// Wait blocks until the command exits and returns its status. It must
	// be safe to call Wait concurrently with stream reads; streams may
	// still hold buffered data after Wait returns.
	Wait(ctx context.Context) (ExitStatus, error)
}

// Resizer is an optional capability of PTY-backed executions. Callers
// type-assert an ExecutionHandle to propagate local terminal dimensions.
type Resizer interface {
	Resize(rows, cols int) error
}

// Stream is a finite, non-restartable sequence of byte chunks.
type Stream interface {
	// Next returns the next chunk, or io.EOF once the stream ends. An
	// empty chunk with a nil error is valid and distinct from end-of-stream.
	Next(ctx context.Context) ([]byte, error)
}

// StreamWriter accepts input for a running command.
type StreamWriter interface {
	Write(p []byte) (int, error)

	// Close signals end-of-input to the remote command.
	Close() error
}

// ExitStatus is a command's exit code. Negative values denote termination
// by signal: a command killed by signal N reports -N.
type ExitStatus int

// Signaled reports whether the status denotes signal termination.
func (s ExitStatus) Signaled() bool { return s < 0 }

// Success reports whether the command exited normally with code zero.
func (s ExitStatus) Success() bool { return s == 0 }

// BoxConfig is the configuration handed to CreateBox. It mirrors the
// caller-facing options surface; validation happens above this boundary.
type BoxConfig struct {
	Image      string
	Name       string
	CPUs       int
	MemoryMiB  int
	WorkDir    string
	Env        map[string]string
	Volumes    []VolumeMount
	Ports      []PortMapping
	AutoRemove bool
}

// VolumeMount maps a host path into the box.
type VolumeMount struct {
	HostPath  string
	GuestPath string
	ReadOnly  bool
}

// PortMapping exposes a guest port on the host. HostPort zero lets the
// backend pick an ephemeral port. Protocol defaults to "tcp".
type PortMapping struct {
	HostPort  int
	GuestPort int
	Protocol  string
}

// ExecSpec describes one command submission.
type ExecSpec struct {
	Program string
	Args    []string
	Env     map[string]string
	WorkDir string

	// TTY requests a PTY-backed execution. PTY execs typically expose a
	// combined output stream and no separate stderr.
	TTY bool
}

// BoxInfo is box metadata as reported by the backend.
type BoxInfo struct {
	ID        string
	Name      string
	Image     string
	Status    string
	CreatedAt time.Time
}
