// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestGet_KnownIds(t *testing.T) {
	t.Parallel()

	ids := []Id{
		EngineNotFoundId,
		BoxCreateFailedId,
		BoxNotFoundId,
		ExecFailedId,
		PTYNotSupportedId,
		ConfigLoadFailedId,
	}
	for _, id := range ids {
		iss := Get(id)
		if iss == nil {
			t.Errorf("Get(%d) returned nil; catalog entry missing", id)
			continue
		}
		if iss.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, iss.Id())
		}
		if strings.TrimSpace(string(iss.MarkdownMsg())) == "" {
			t.Errorf("issue %d has empty guidance", id)
		}
	}
}

func TestGet_UnknownId(t *testing.T) {
	t.Parallel()

	if iss := Get(Id(9999)); iss != nil {
		t.Errorf("expected nil for unknown id, got %v", iss)
	}
}

func TestValues_MatchesCatalog(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(issues) {
		t.Errorf("Values() returned %d issues, catalog has %d", len(values), len(issues))
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	// Swap the renderer so the test does not depend on glamour's styling.
	orig := render
	defer func() { render = orig }()
	render = func(in, stylePath string) (string, error) {
		return "rendered:" + in, nil
	}

	out, err := Get(EngineNotFoundId).Render("dark")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.HasPrefix(out, "rendered:") {
		t.Errorf("expected swapped renderer output, got %q", out)
	}
}
