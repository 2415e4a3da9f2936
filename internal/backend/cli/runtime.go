// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"boxlite-go/internal/backend"
)

type (
	// RuntimeOption configures a Runtime.
	RuntimeOption func(*Runtime)

	// Runtime implements backend.Runtime on top of a container engine
	// binary.
	Runtime struct {
		engine Engine
		logger *slog.Logger
	}
)

// WithLogger sets the runtime's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// NewRuntime creates a Runtime driving the given engine.
func NewRuntime(engine Engine, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		engine: engine,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewAutoDetectRuntime creates a Runtime for whichever engine is available.
func NewAutoDetectRuntime(opts ...RuntimeOption) (*Runtime, error) {
	engine, err := AutoDetectEngine()
	if err != nil {
		return nil, err
	}
	return NewRuntime(engine, opts...), nil
}

// CreateBox starts a detached container from the configuration and returns
// a handle to it. The container runs an idle process so that subsequent
// execs have a live target.
func (r *Runtime) CreateBox(ctx context.Context, cfg backend.BoxConfig) (backend.BoxHandle, error) {
	name := cfg.Name
	if name == "" {
		name = generatedBoxName()
	}
	cfg.Name = name

	out, err := r.engine.RunCommandWithOutput(ctx, r.engine.CreateArgs(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create box %q from image %q: %w", name, cfg.Image, err)
	}

	id := lastLine(out)
	if id == "" {
		return nil, fmt.Errorf("create box %q: engine returned no container ID", name)
	}

	r.logger.Debug("created box", "name", name, "id", id, "image", cfg.Image)

	return &boxHandle{
		engine: r.engine,
		id:     id,
		name:   name,
		logger: r.logger,
	}, nil
}

// Lookup resolves a box name to a handle for its live container.
func (r *Runtime) Lookup(ctx context.Context, name string) (backend.BoxHandle, bool, error) {
	out, err := r.engine.RunCommandWithOutput(ctx, r.engine.LookupArgs(name)...)
	if err != nil {
		return nil, false, fmt.Errorf("look up box %q: %w", name, err)
	}

	id := lastLine(out)
	if id == "" {
		return nil, false, nil
	}

	return &boxHandle{
		engine: r.engine,
		id:     id,
		name:   name,
		logger: r.logger,
	}, true, nil
}

// List enumerates the live boxes this runtime manages, identified by the
// label stamped on every container at creation. Box names and metadata
// come from each handle's Info.
func (r *Runtime) List(ctx context.Context) ([]backend.BoxHandle, error) {
	out, err := r.engine.RunCommandWithOutput(ctx, r.engine.ListArgs()...)
	if err != nil {
		return nil, fmt.Errorf("list boxes: %w", err)
	}

	var handles []backend.BoxHandle
	for _, line := range strings.Split(out, "\n") {
		id := strings.TrimSpace(line)
		if id == "" {
			continue
		}
		handles = append(handles, &boxHandle{
			engine: r.engine,
			id:     id,
			logger: r.logger,
		})
	}
	return handles, nil
}

// generatedBoxName produces a unique name for anonymous boxes.
func generatedBoxName() string {
	return "boxlite-" + uuid.NewString()[:8]
}

// lastLine returns the final non-empty line of engine output. `run -d`
// may print pull progress before the container ID.
func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
