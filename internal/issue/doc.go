// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error presentation: a catalog of
// known failure conditions with rendered markdown guidance, and an
// ActionableError type that carries operation context and fix
// suggestions through the error chain.
package issue
