// SPDX-License-Identifier: MPL-2.0

//go:build unix

package cli

import (
	"os"
	"syscall"

	"boxlite-go/internal/backend"
)

// exitStatus maps a process state to the backend convention: the exit code
// for normal termination, -N for termination by signal N.
func exitStatus(ps *os.ProcessState) backend.ExitStatus {
	if code := ps.ExitCode(); code >= 0 {
		return backend.ExitStatus(code)
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return backend.ExitStatus(-int(ws.Signal()))
	}
	return backend.ExitStatus(-1)
}
