// SPDX-License-Identifier: MPL-2.0

package boxlite

import (
	"os"
	"sync"

	"golang.org/x/term"
)

// terminalControl abstracts the local terminal so interactive sessions
// can be tested without a real TTY. The zero implementations wrap
// golang.org/x/term over the process's stdin.
type terminalControl interface {
	// IsTerminal reports whether the controlled descriptor is a TTY.
	IsTerminal() bool
	// EnableRaw switches the terminal into raw mode, saving the prior
	// state. Repeated calls are no-ops after the first.
	EnableRaw() error
	// DisableRaw restores the state saved by EnableRaw. It is safe to
	// call without a prior EnableRaw and safe to call repeatedly; only
	// the first call after a successful EnableRaw does work.
	DisableRaw() error
	// Size returns the terminal's current dimensions.
	Size() (rows, cols int, err error)
}

// stdinTerminal controls the terminal attached to os.Stdin.
type stdinTerminal struct {
	mu    sync.Mutex
	saved *term.State
}

func newStdinTerminal() *stdinTerminal { return &stdinTerminal{} }

func (t *stdinTerminal) IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (t *stdinTerminal) EnableRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saved != nil {
		return nil
	}
	state, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	t.saved = state
	return nil
}

func (t *stdinTerminal) DisableRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saved == nil {
		return nil
	}
	state := t.saved
	t.saved = nil
	return term.Restore(int(os.Stdin.Fd()), state)
}

func (t *stdinTerminal) Size() (rows, cols int, err error) {
	cols, rows, err = term.GetSize(int(os.Stdin.Fd()))
	return rows, cols, err
}
