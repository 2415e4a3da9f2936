// SPDX-License-Identifier: MPL-2.0

//go:build unix

package cli

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// startWithPTY starts cmd attached to a newly allocated pseudo-terminal
// and returns the master side.
func startWithPTY(cmd *exec.Cmd) (*os.File, error) {
	return pty.Start(cmd)
}

// resizePTY propagates a terminal size to the PTY master.
func resizePTY(f *os.File, rows, cols int) error {
	return pty.Setsize(f, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}
