// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	t.Run("operation only", func(t *testing.T) {
		t.Parallel()
		err := &ActionableError{Operation: "create box"}
		if err.Error() != "failed to create box" {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("with resource and cause", func(t *testing.T) {
		t.Parallel()
		err := &ActionableError{
			Operation: "create box",
			Resource:  "alpine:3.20",
			Cause:     errors.New("daemon not running"),
		}
		want := "failed to create box: alpine:3.20: daemon not running"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("root cause")
	err := WrapWithOperation(cause, "run command")
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause through Unwrap")
	}
}

func TestWrapWithOperation_NilError(t *testing.T) {
	t.Parallel()

	if err := WrapWithOperation(nil, "anything"); err != nil {
		t.Errorf("expected nil for nil cause, got %v", err)
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("pull access denied")
	err := NewErrorContext().
		WithOperation("create box").
		WithResource("private/image:latest").
		WithSuggestion("Log in to the registry first").
		WithSuggestion("Check the image name").
		Wrap(inner).
		Build()

	t.Run("concise", func(t *testing.T) {
		t.Parallel()
		out := err.Format(false)
		if !strings.Contains(out, "• Log in to the registry first") {
			t.Errorf("expected suggestions in output, got %q", out)
		}
		if strings.Contains(out, "Error chain") {
			t.Error("expected no error chain in non-verbose output")
		}
	})

	t.Run("verbose", func(t *testing.T) {
		t.Parallel()
		out := err.Format(true)
		if !strings.Contains(out, "Error chain:") {
			t.Errorf("expected error chain in verbose output, got %q", out)
		}
		if !strings.Contains(out, "pull access denied") {
			t.Errorf("expected cause in chain, got %q", out)
		}
	})
}

func TestErrorContext_RequiresOperation(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("thing").BuildError(); err != nil {
		t.Errorf("expected nil without an operation, got %v", err)
	}
}
