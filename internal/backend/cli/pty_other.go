// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package cli

import (
	"errors"
	"os"
	"os/exec"
)

var errPTYUnsupported = errors.New("pty-backed execution is not supported on this platform")

func startWithPTY(cmd *exec.Cmd) (*os.File, error) {
	return nil, errPTYUnsupported
}

func resizePTY(f *os.File, rows, cols int) error {
	return errPTYUnsupported
}
