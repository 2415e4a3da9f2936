// SPDX-License-Identifier: MPL-2.0

// Package boxlite is a client SDK for running commands in isolated
// sandbox boxes. A Box is a lazy session handle: it is constructed from
// options alone and the backing box materializes on first use, exactly
// once. One-shot commands go through Run, Output and Collect; interactive
// work goes through Attach, which bridges the local terminal to a remote
// PTY and guarantees the terminal is restored on every exit path.
package boxlite
