// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"boxlite-go/internal/backend"
)

// boxHandle is one live container-backed box. It implements
// backend.BoxHandle.
type boxHandle struct {
	engine Engine
	id     string
	name   string
	logger *slog.Logger
}

func (b *boxHandle) ID() string { return b.id }

// containerInspect is the subset of the engine's inspect output the box
// cares about.
type containerInspect struct {
	ID      string    `json:"Id"`
	Name    string    `json:"Name"`
	Created time.Time `json:"Created"`
	State   struct {
		Status string `json:"Status"`
	} `json:"State"`
	Config struct {
		Image string `json:"Image"`
	} `json:"Config"`
}

func (b *boxHandle) Info(ctx context.Context) (backend.BoxInfo, error) {
	out, err := b.engine.RunCommandWithOutput(ctx, b.engine.InspectArgs(b.id)...)
	if err != nil {
		return backend.BoxInfo{}, fmt.Errorf("inspect box %s: %w", b.id, err)
	}

	var ins containerInspect
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &ins); err != nil {
		return backend.BoxInfo{}, fmt.Errorf("decode inspect output for box %s: %w", b.id, err)
	}

	return backend.BoxInfo{
		ID:        ins.ID,
		Name:      strings.TrimPrefix(ins.Name, "/"),
		Image:     ins.Config.Image,
		Status:    ins.State.Status,
		CreatedAt: ins.Created,
	}, nil
}

func (b *boxHandle) Exec(ctx context.Context, spec backend.ExecSpec) (backend.ExecutionHandle, error) {
	args := b.engine.ExecArgs(b.id, spec)
	cmd := b.engine.CreateCommand(ctx, args...)

	b.logger.Debug("submitting exec", "box", b.id, "program", spec.Program, "tty", spec.TTY)

	if spec.TTY {
		ptmx, err := startWithPTY(cmd)
		if err != nil {
			return nil, fmt.Errorf("start pty exec in box %s: %w", b.id, err)
		}
		return startPTYExecution(cmd, ptmx), nil
	}

	ex, err := startPipeExecution(cmd)
	if err != nil {
		return nil, fmt.Errorf("start exec in box %s: %w", b.id, err)
	}
	return ex, nil
}

// Stop stops the container and, when remove is set, deletes it. An
// engine error for a container that is already gone is reported to the
// caller; the SDK's disposal path decides whether to swallow it.
func (b *boxHandle) Stop(ctx context.Context, remove bool) error {
	stopErr := b.engine.RunCommandStatus(ctx, b.engine.StopArgs(b.id)...)
	if stopErr != nil {
		b.logger.Debug("engine stop reported error", "box", b.id, "error", stopErr)
	}

	if remove {
		if err := b.engine.RunCommandStatus(ctx, b.engine.RemoveArgs(b.id, true)...); err != nil {
			return fmt.Errorf("remove box %s: %w", b.id, err)
		}
		return nil
	}
	return stopErr
}
