// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"boxlite-go/internal/backend"
)

// managedLabel marks containers created by this runtime so that List can
// tell them apart from unrelated containers on the same engine.
const managedLabel = "boxlite.managed"

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// BaseEngineOption configures a BaseEngine.
	BaseEngineOption func(*BaseEngine)

	// BaseEngine provides the implementation shared by the Docker and
	// Podman engines: command creation with an injectable exec function,
	// output capture, and argument construction for the box operations.
	BaseEngine struct {
		name        string // engine name for error messages
		binaryPath  string
		execCommand ExecCommandFunc
	}
)

// WithExecCommand overrides how exec.Cmd instances are created.
// Used by tests to record invocations instead of running real commands.
func WithExecCommand(fn ExecCommandFunc) BaseEngineOption {
	return func(e *BaseEngine) {
		e.execCommand = fn
	}
}

// NewBaseEngine creates a BaseEngine for the given binary.
func NewBaseEngine(name, binaryPath string, opts ...BaseEngineOption) *BaseEngine {
	e := &BaseEngine{
		name:        name,
		binaryPath:  binaryPath,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BinaryPath returns the resolved engine binary path.
func (e *BaseEngine) BinaryPath() string { return e.binaryPath }

// CreateCommand builds an exec.Cmd for the engine binary with the given args.
func (e *BaseEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	return e.execCommand(ctx, e.binaryPath, args...)
}

// RunCommandWithOutput executes an engine command and captures its stdout.
func (e *BaseEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s command failed: %w: %s", e.name, err, msg)
		}
		return "", fmt.Errorf("%s command failed: %w", e.name, err)
	}
	return stdout.String(), nil
}

// RunCommandStatus executes an engine command, discarding output.
func (e *BaseEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	_, err := e.RunCommandWithOutput(ctx, args...)
	return err
}

// --- Argument Construction ---

// CreateArgs constructs arguments for materializing a box: a detached
// container kept alive by an idle process so that execs can target it.
//
// Generated command: <binary> run -d [options] <image> sleep infinity
//
// Every container is stamped with the managed label so that List can
// enumerate boxes without relying on name conventions.
func (e *BaseEngine) CreateArgs(cfg backend.BoxConfig) []string {
	args := []string{"run", "-d", "--label", managedLabel + "=true"}

	if cfg.Name != "" {
		args = append(args, "--name", cfg.Name)
	}

	if cfg.CPUs > 0 {
		args = append(args, "--cpus", fmt.Sprintf("%d", cfg.CPUs))
	}

	if cfg.MemoryMiB > 0 {
		args = append(args, "--memory", fmt.Sprintf("%dm", cfg.MemoryMiB))
	}

	if cfg.WorkDir != "" {
		args = append(args, "-w", cfg.WorkDir)
	}

	for k, v := range cfg.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}

	for _, v := range cfg.Volumes {
		args = append(args, "-v", formatVolume(v))
	}

	for _, p := range cfg.Ports {
		args = append(args, "-p", formatPort(p))
	}

	args = append(args, cfg.Image, "sleep", "infinity")

	return args
}

// ExecArgs constructs arguments for running a command inside a box.
//
// Generated command: <binary> exec [options] <container> <program> [args...]
func (e *BaseEngine) ExecArgs(containerID string, spec backend.ExecSpec) []string {
	args := []string{"exec", "-i"}

	if spec.TTY {
		args = append(args, "-t")
	}

	if spec.WorkDir != "" {
		args = append(args, "-w", spec.WorkDir)
	}

	for k, v := range spec.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}

	args = append(args, containerID, spec.Program)
	args = append(args, spec.Args...)

	return args
}

// StopArgs constructs arguments for stopping a box's container.
func (e *BaseEngine) StopArgs(containerID string) []string {
	return []string{"stop", containerID}
}

// RemoveArgs constructs arguments for removing a box's container.
func (e *BaseEngine) RemoveArgs(containerID string, force bool) []string {
	args := []string{"rm"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, containerID)
	return args
}

// LookupArgs constructs arguments for resolving a box name to a container ID.
// The name filter is anchored so that "dev" does not match "dev-2".
func (e *BaseEngine) LookupArgs(name string) []string {
	return []string{"ps", "-q", "--no-trunc", "--filter", fmt.Sprintf("name=^%s$", name)}
}

// ListArgs constructs arguments for enumerating the containers carrying
// the managed label.
func (e *BaseEngine) ListArgs() []string {
	return []string{"ps", "-q", "--no-trunc", "--filter", "label=" + managedLabel + "=true"}
}

// InspectArgs constructs arguments for fetching box metadata as JSON.
func (e *BaseEngine) InspectArgs(containerID string) []string {
	return []string{"inspect", "--format", "{{json .}}", containerID}
}

// formatVolume renders a volume mount as host:guest[:ro].
func formatVolume(v backend.VolumeMount) string {
	spec := fmt.Sprintf("%s:%s", v.HostPath, v.GuestPath)
	if v.ReadOnly {
		spec += ":ro"
	}
	return spec
}

// formatPort renders a port mapping as [host:]guest[/protocol].
// A zero host port asks the engine for an ephemeral one.
func formatPort(p backend.PortMapping) string {
	var spec string
	if p.HostPort > 0 {
		spec = fmt.Sprintf("%d:%d", p.HostPort, p.GuestPort)
	} else {
		spec = fmt.Sprintf("%d", p.GuestPort)
	}
	if p.Protocol != "" {
		spec += "/" + p.Protocol
	}
	return spec
}
