// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	stopKeep bool

	// stopCmd tears down running boxes by name
	stopCmd = &cobra.Command{
		Use:   "stop NAME [NAME...]",
		Short: "Stop one or more running boxes",
		Long: `Stop one or more running boxes, addressed by name.

The box's persisted state is removed as well unless --keep is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runStop,
	}
)

func init() {
	stopCmd.Flags().BoolVar(&stopKeep, "keep", false, "keep the box's state after it stops")
}

func runStop(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var failed bool
	for _, name := range args {
		handle, err := lookupBox(ctx, name)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", ErrorStyle.Render("✗"), err)
			failed = true
			continue
		}
		if err := handle.Stop(ctx, !stopKeep); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s failed to stop %s: %v\n", ErrorStyle.Render("✗"), CmdStyle.Render(name), err)
			failed = true
			continue
		}
		fmt.Printf("%s Stopped %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(name))
	}
	if failed {
		return &ExitError{Code: 1, Err: fmt.Errorf("not all boxes could be stopped")}
	}
	return nil
}
