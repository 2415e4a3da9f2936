// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"time"

	"boxlite-go/pkg/boxlite"

	"github.com/spf13/cobra"
)

var (
	shellName    string
	shellProgram string

	// shellCmd opens an interactive shell inside a box
	shellCmd = &cobra.Command{
		Use:   "shell [flags] [IMAGE]",
		Short: "Open an interactive shell inside a box",
		Long: `Open an interactive shell inside a box.

Without --name a fresh box is created from IMAGE (or the configured
default image) and torn down when the shell exits. With --name the
shell attaches to an already-running box, which keeps running
afterwards.

Examples:
  boxlite shell alpine:latest
  boxlite shell --name dev
  boxlite shell --shell /bin/bash ubuntu:24.04`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShell,
	}
)

func init() {
	shellCmd.Flags().StringVar(&shellName, "name", "", "attach to a running box instead of creating one")
	shellCmd.Flags().StringVar(&shellProgram, "shell", "/bin/sh", "shell program to run inside the box")
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	command := boxlite.Command{Program: shellProgram}

	if shellName != "" {
		handle, err := lookupBox(ctx, shellName)
		if err != nil {
			return err
		}
		box, err := adoptedBox(ctx, handle)
		if err != nil {
			return err
		}
		return runCommandInBox(ctx, box, command, true)
	}

	image := cfg.DefaultImage
	if len(args) > 0 {
		image = args[0]
	}

	opts := boxlite.DefaultOptions(image)
	opts.AutoRemove = cfg.Box.AutoRemove

	rt, err := engineRuntime()
	if err != nil {
		return err
	}

	return boxlite.With(ctx, opts, func(box *boxlite.Box) error {
		if timeout := time.Duration(cfg.Box.ReadyTimeoutSecs) * time.Second; timeout > 0 {
			if _, err := box.Identity(ctx); err != nil {
				return formatBoxError(err)
			}
			if err := box.WaitUntilReady(ctx, timeout); err != nil {
				return formatBoxError(err)
			}
		}
		return runCommandInBox(ctx, box, command, true)
	}, boxlite.WithRuntime(rt), boxlite.WithLogger(sdkLogger()))
}
