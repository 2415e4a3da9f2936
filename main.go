// SPDX-License-Identifier: MPL-2.0

// Command boxlite runs commands in lightweight sandbox boxes.
package main

import cmd "boxlite-go/cmd/boxlite"

func main() {
	cmd.Execute()
}
