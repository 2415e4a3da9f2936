// SPDX-License-Identifier: MPL-2.0

// Package cli implements the backend runtime boundary by driving a container
// engine binary (Docker or Podman). Each box is a detached container kept
// alive by an idle process; execs map to `docker exec` invocations, with a
// PTY allocated locally when the caller asks for one.
package cli

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"boxlite-go/internal/backend"
)

// EngineType identifies the container engine flavor.
type EngineType string

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypePodman EngineType = "podman"
)

// Engine abstracts the container engine binary.
type Engine interface {
	// Name returns the engine name (docker or podman).
	Name() string
	// Available checks if the engine is usable on this system.
	Available() bool
	// Version returns the engine's server version.
	Version(ctx context.Context) (string, error)
	// BinaryPath returns the resolved engine binary path.
	BinaryPath() string

	// CreateCommand builds an exec.Cmd for the engine binary. Exposed so
	// callers can attach PTYs or pipes before starting the command.
	CreateCommand(ctx context.Context, args ...string) *exec.Cmd
	// RunCommandWithOutput executes an engine command and captures stdout.
	RunCommandWithOutput(ctx context.Context, args ...string) (string, error)
	// RunCommandStatus executes an engine command, discarding output.
	RunCommandStatus(ctx context.Context, args ...string) error

	// Argument builders shared by both engine flavors.
	CreateArgs(cfg backend.BoxConfig) []string
	ExecArgs(containerID string, spec backend.ExecSpec) []string
	StopArgs(containerID string) []string
	RemoveArgs(containerID string, force bool) []string
	LookupArgs(name string) []string
	ListArgs() []string
	InspectArgs(containerID string) []string
}

// ErrEngineNotAvailable is returned when no usable container engine exists.
type ErrEngineNotAvailable struct {
	Engine string
	Reason string
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// DockerEngine drives the Docker CLI. It embeds BaseEngine for argument
// construction and command creation.
type DockerEngine struct {
	*BaseEngine
}

// NewDockerEngine resolves the docker binary and returns an engine for it.
func NewDockerEngine(opts ...BaseEngineOption) *DockerEngine {
	path, _ := exec.LookPath("docker")
	return &DockerEngine{BaseEngine: NewBaseEngine("docker", path, opts...)}
}

func (e *DockerEngine) Name() string { return string(EngineTypeDocker) }

// Available checks that the binary exists and the daemon answers.
func (e *DockerEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	cmd := e.CreateCommand(context.Background(), "version", "--format", "{{.Server.Version}}")
	return cmd.Run() == nil
}

func (e *DockerEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Server.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get docker version: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// PodmanEngine drives the Podman CLI.
type PodmanEngine struct {
	*BaseEngine
}

// NewPodmanEngine resolves the podman binary and returns an engine for it.
func NewPodmanEngine(opts ...BaseEngineOption) *PodmanEngine {
	path, _ := exec.LookPath("podman")
	return &PodmanEngine{BaseEngine: NewBaseEngine("podman", path, opts...)}
}

func (e *PodmanEngine) Name() string { return string(EngineTypePodman) }

func (e *PodmanEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	cmd := e.CreateCommand(context.Background(), "info", "--format", "{{.Version.Version}}")
	return cmd.Run() == nil
}

func (e *PodmanEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "info", "--format", "{{.Version.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get podman version: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// NewEngine creates an engine of the preferred type, falling back to the
// other flavor when the preferred one is unavailable.
func NewEngine(preferred EngineType) (Engine, error) {
	switch preferred {
	case EngineTypePodman:
		engine := NewPodmanEngine()
		if engine.Available() {
			return engine, nil
		}
		docker := NewDockerEngine()
		if docker.Available() {
			return docker, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "podman",
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	case EngineTypeDocker:
		engine := NewDockerEngine()
		if engine.Available() {
			return engine, nil
		}
		podman := NewPodmanEngine()
		if podman.Available() {
			return podman, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "docker",
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferred)
	}
}

// AutoDetectEngine tries to find any available container engine,
// preferring Docker.
func AutoDetectEngine() (Engine, error) {
	docker := NewDockerEngine()
	if docker.Available() {
		return docker, nil
	}

	podman := NewPodmanEngine()
	if podman.Available() {
		return podman, nil
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (docker or podman) is available on this system",
	}
}
