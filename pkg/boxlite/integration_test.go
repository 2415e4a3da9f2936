// SPDX-License-Identifier: MPL-2.0

// Integration tests exercising the SDK against a real container engine.
// They require Docker or Podman and are skipped in short mode.

package boxlite

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"

	"boxlite-go/internal/backend/cli"
)

// checkTestcontainersAvailable safely checks if a container provider can
// be reached. testcontainers-go's own detection can panic, so recover.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

func TestBox_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := cli.AutoDetectEngine(); err != nil {
		t.Skipf("skipping: no container engine available: %v", err)
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping: testcontainers provider not available")
	}

	t.Run("RunAndCollect", testIntegrationRunAndCollect)
	t.Run("NonzeroExit", testIntegrationNonzeroExit)
	t.Run("OutputEnforcesZeroExit", testIntegrationOutputEnforcesZeroExit)
	t.Run("LazyCreationAndReuse", testIntegrationLazyCreationAndReuse)
	t.Run("StopIsIdempotent", testIntegrationStopIsIdempotent)
}

func newIntegrationBox(t *testing.T) *Box {
	t.Helper()
	b, err := New(DefaultOptions("alpine:latest"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return b
}

func testIntegrationRunAndCollect(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	b := newIntegrationBox(t)
	defer b.Stop(ctx)

	res, err := b.Run(ctx, "echo", "hello from box")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("Run() exit code = %d, want 0, stderr: %s", res.ExitCode, res.Stderr)
	}
	if got := strings.TrimSpace(res.Stdout); got != "hello from box" {
		t.Errorf("Run() stdout = %q, want %q", got, "hello from box")
	}
}

func testIntegrationNonzeroExit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	b := newIntegrationBox(t)
	defer b.Stop(ctx)

	res, err := b.RunWith(ctx, Command{Program: "sh", Args: []string{"-c", "echo oops >&2; exit 3"}})
	if err != nil {
		t.Fatalf("RunWith() error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("RunWith() exit code = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "oops") {
		t.Errorf("RunWith() stderr = %q, want it to contain 'oops'", res.Stderr)
	}
}

func testIntegrationOutputEnforcesZeroExit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	b := newIntegrationBox(t)
	defer b.Stop(ctx)

	_, err := b.Output(ctx, "false")
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("Output() error = %v, want *ExecError", err)
	}
	if execErr.ExitCode != 1 {
		t.Errorf("ExecError.ExitCode = %d, want 1", execErr.ExitCode)
	}
}

func testIntegrationLazyCreationAndReuse(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	b := newIntegrationBox(t)
	defer b.Stop(ctx)

	if _, err := b.ID(); err == nil {
		t.Error("ID() before first use should fail with ErrNotReady")
	}

	if _, err := b.Run(ctx, "true"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	id1, err := b.ID()
	if err != nil {
		t.Fatalf("ID() after first use error: %v", err)
	}

	if _, err := b.Run(ctx, "true"); err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	id2, _ := b.ID()
	if id1 != id2 {
		t.Errorf("expected both commands to share one box, got %q and %q", id1, id2)
	}
}

func testIntegrationStopIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	b := newIntegrationBox(t)
	if _, err := b.Run(ctx, "true"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	b.Stop(ctx)
	b.Stop(ctx) // second call must be a no-op

	if _, err := b.Run(ctx, "true"); err == nil {
		t.Error("Run() after Stop should fail")
	}
}
