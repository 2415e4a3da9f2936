// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"strings"
	"testing"

	"boxlite-go/internal/backend"
)

func TestLastLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single line", "abc123\n", "abc123"},
		{"pull progress before id", "Pulling image...\nDone\nabc123\n", "abc123"},
		{"trailing blank lines", "abc123\n\n\n", "abc123"},
		{"empty output", "", ""},
		{"only whitespace", "  \n \n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := lastLine(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRuntime_CreateBox(t *testing.T) {
	t.Run("returns handle with engine-reported id", func(t *testing.T) {
		recorder := NewCommandRecorder()
		recorder.Stdout = "deadbeefcafe\n"
		rt := NewRuntime(newTestEngine(t, recorder))

		handle, err := rt.CreateBox(context.Background(), backend.BoxConfig{
			Image: "alpine:3.20",
			Name:  "dev",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if handle.ID() != "deadbeefcafe" {
			t.Errorf("expected id 'deadbeefcafe', got %q", handle.ID())
		}

		recorder.AssertInvocationCount(t, 1)
		recorder.AssertFirstArg(t, "run")
		if !recorder.HasArgPair("--name", "dev") {
			t.Errorf("expected --name dev, got: %v", recorder.LastArgs())
		}
	})

	t.Run("generates a name for anonymous boxes", func(t *testing.T) {
		recorder := NewCommandRecorder()
		recorder.Stdout = "deadbeefcafe\n"
		rt := NewRuntime(newTestEngine(t, recorder))

		_, err := rt.CreateBox(context.Background(), backend.BoxConfig{Image: "alpine:3.20"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		args := strings.Join(recorder.LastArgs(), " ")
		if !strings.Contains(args, "--name boxlite-") {
			t.Errorf("expected generated boxlite- name, got: %v", recorder.LastArgs())
		}
	})

	t.Run("empty engine output is an error", func(t *testing.T) {
		recorder := NewCommandRecorder()
		rt := NewRuntime(newTestEngine(t, recorder))

		_, err := rt.CreateBox(context.Background(), backend.BoxConfig{Image: "alpine:3.20"})
		if err == nil {
			t.Fatal("expected error when engine returns no container ID")
		}
	})
}

func TestRuntime_Lookup(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		recorder := NewCommandRecorder()
		recorder.Stdout = "deadbeefcafe\n"
		rt := NewRuntime(newTestEngine(t, recorder))

		handle, found, err := rt.Lookup(context.Background(), "dev")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !found {
			t.Fatal("expected lookup to find the box")
		}
		if handle.ID() != "deadbeefcafe" {
			t.Errorf("expected id 'deadbeefcafe', got %q", handle.ID())
		}
		recorder.AssertFirstArg(t, "ps")
	})

	t.Run("not found is not an error", func(t *testing.T) {
		recorder := NewCommandRecorder()
		rt := NewRuntime(newTestEngine(t, recorder))

		handle, found, err := rt.Lookup(context.Background(), "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found || handle != nil {
			t.Errorf("expected no handle for missing box, got %v", handle)
		}
	})
}

func TestRuntime_List(t *testing.T) {
	t.Run("returns a handle per container", func(t *testing.T) {
		recorder := NewCommandRecorder()
		recorder.Stdout = "deadbeefcafe\nfeedfacebeef\n"
		rt := NewRuntime(newTestEngine(t, recorder))

		handles, err := rt.List(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(handles) != 2 {
			t.Fatalf("expected 2 handles, got %d", len(handles))
		}
		if handles[0].ID() != "deadbeefcafe" || handles[1].ID() != "feedfacebeef" {
			t.Errorf("unexpected handle ids: %q, %q", handles[0].ID(), handles[1].ID())
		}

		recorder.AssertFirstArg(t, "ps")
		if !strings.Contains(strings.Join(recorder.LastArgs(), " "), "label=boxlite.managed=true") {
			t.Errorf("expected managed-label filter, got: %v", recorder.LastArgs())
		}
	})

	t.Run("no containers yields empty list", func(t *testing.T) {
		recorder := NewCommandRecorder()
		rt := NewRuntime(newTestEngine(t, recorder))

		handles, err := rt.List(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(handles) != 0 {
			t.Errorf("expected no handles, got %d", len(handles))
		}
	})
}

func TestGeneratedBoxName(t *testing.T) {
	t.Parallel()

	a, b := generatedBoxName(), generatedBoxName()
	if !strings.HasPrefix(a, "boxlite-") {
		t.Errorf("expected boxlite- prefix, got %q", a)
	}
	if a == b {
		t.Errorf("expected unique names, got %q twice", a)
	}
}
