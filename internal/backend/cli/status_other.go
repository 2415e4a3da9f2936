// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package cli

import (
	"os"

	"boxlite-go/internal/backend"
)

// exitStatus maps a process state to an exit status. Signal decoding is
// unix-only; elsewhere the raw exit code is all we have.
func exitStatus(ps *os.ProcessState) backend.ExitStatus {
	return backend.ExitStatus(ps.ExitCode())
}
