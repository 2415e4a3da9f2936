// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"boxlite-go/pkg/boxlite"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/shell"
)

var (
	execWorkdir     string
	execEnv         []string
	execEnvFile     string
	execCommand     string
	execInteractive bool

	// execCmd runs a command in an already-running box
	execCmd = &cobra.Command{
		Use:   "exec [flags] NAME [-- PROGRAM [ARGS...]]",
		Short: "Run a command in a running box",
		Long: `Run a command in an already-running box, addressed by name.

The box must have been started earlier, typically with
'boxlite run --name NAME --detach'. The box keeps running after the
command finishes.

Examples:
  boxlite exec dev -- ls -la /tmp
  boxlite exec -i dev -- top
  boxlite exec --command "cat /etc/os-release" dev`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExec,
	}
)

func init() {
	execCmd.Flags().StringVarP(&execWorkdir, "workdir", "w", "", "working directory inside the box")
	execCmd.Flags().StringArrayVarP(&execEnv, "env", "e", nil, "environment entry KEY=VALUE (repeatable)")
	execCmd.Flags().StringVar(&execEnvFile, "env-file", "", "read environment entries from a dotenv file")
	execCmd.Flags().StringVarP(&execCommand, "command", "c", "", "command string to run, split with shell word rules")
	execCmd.Flags().BoolVarP(&execInteractive, "interactive", "i", false, "attach a PTY and bridge the local terminal")
}

func runExec(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	name := args[0]
	program := args[1:]
	if execCommand != "" {
		if len(program) > 0 {
			return fmt.Errorf("--command and positional command arguments are mutually exclusive")
		}
		fields, err := shell.Fields(execCommand, nil)
		if err != nil {
			return fmt.Errorf("failed to split command string: %w", err)
		}
		program = fields
	}
	if len(program) == 0 {
		return fmt.Errorf("no command given")
	}

	env, err := collectEnv(execEnvFile, execEnv)
	if err != nil {
		return err
	}

	handle, err := lookupBox(ctx, name)
	if err != nil {
		return err
	}
	box, err := adoptedBox(ctx, handle)
	if err != nil {
		return err
	}

	command := boxlite.Command{
		Program: program[0],
		Args:    program[1:],
		Env:     env,
		WorkDir: execWorkdir,
	}
	return runCommandInBox(ctx, box, command, execInteractive)
}
