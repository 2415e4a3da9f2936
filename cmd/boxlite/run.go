// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"time"

	"boxlite-go/pkg/boxlite"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/shell"
)

var (
	runName        string
	runWorkdir     string
	runEnv         []string
	runEnvFile     string
	runVolumes     []string
	runPorts       []string
	runCPUs        int
	runMemory      int
	runCommand     string
	runInteractive bool
	runDetach      bool
	runNoRemove    bool

	// runCmd creates a box and runs a command inside it
	runCmd = &cobra.Command{
		Use:   "run [flags] IMAGE [-- PROGRAM [ARGS...]]",
		Short: "Create a box and run a command inside it",
		Long: `Create a box from an image and run a command inside it.

The box is created lazily and stopped when the command finishes, unless
--detach leaves it running for later 'boxlite exec' and 'boxlite shell'
calls. Without a command, --detach is required and the box just starts.

Examples:
  boxlite run alpine:latest -- echo hello
  boxlite run --name dev --detach alpine:latest
  boxlite run --env-file .env alpine -- env
  boxlite run --command "ls -la /tmp" alpine`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRun,
	}
)

func init() {
	runCmd.Flags().StringVar(&runName, "name", "", "name the box (must be unique among live boxes)")
	runCmd.Flags().StringVarP(&runWorkdir, "workdir", "w", "", "working directory inside the box")
	runCmd.Flags().StringArrayVarP(&runEnv, "env", "e", nil, "environment entry KEY=VALUE (repeatable)")
	runCmd.Flags().StringVar(&runEnvFile, "env-file", "", "read environment entries from a dotenv file")
	runCmd.Flags().StringArrayVar(&runVolumes, "volume", nil, "mount HOST:GUEST[:ro] (repeatable)")
	runCmd.Flags().StringArrayVarP(&runPorts, "publish", "p", nil, "publish [HOST:]GUEST[/PROTOCOL] (repeatable)")
	runCmd.Flags().IntVar(&runCPUs, "cpus", 0, "limit the box to this many CPUs")
	runCmd.Flags().IntVar(&runMemory, "memory", 0, "limit the box's memory, in MiB")
	runCmd.Flags().StringVarP(&runCommand, "command", "c", "", "command string to run, split with shell word rules")
	runCmd.Flags().BoolVarP(&runInteractive, "interactive", "i", false, "attach a PTY and bridge the local terminal")
	runCmd.Flags().BoolVarP(&runDetach, "detach", "d", false, "leave the box running when the command finishes")
	runCmd.Flags().BoolVar(&runNoRemove, "keep", false, "keep the box's state after it stops")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	image := args[0]
	program := args[1:]
	if runCommand != "" {
		if len(program) > 0 {
			return fmt.Errorf("--command and positional command arguments are mutually exclusive")
		}
		fields, err := shell.Fields(runCommand, nil)
		if err != nil {
			return fmt.Errorf("failed to split command string: %w", err)
		}
		program = fields
	}
	if len(program) == 0 && !runDetach {
		return fmt.Errorf("no command given; use --detach to leave the box running")
	}

	env, err := collectEnv(runEnvFile, runEnv)
	if err != nil {
		return err
	}

	opts := boxlite.Options{
		Image:      image,
		Name:       runName,
		CPUs:       runCPUs,
		MemoryMiB:  runMemory,
		WorkDir:    runWorkdir,
		Env:        env,
		AutoRemove: cfg.Box.AutoRemove && !runNoRemove,
		Detach:     runDetach,
	}
	for _, v := range runVolumes {
		mount, err := parseVolume(v)
		if err != nil {
			return err
		}
		opts.Volumes = append(opts.Volumes, mount)
	}
	for _, p := range runPorts {
		mapping, err := parsePort(p)
		if err != nil {
			return err
		}
		opts.Ports = append(opts.Ports, mapping)
	}

	rt, err := engineRuntime()
	if err != nil {
		return err
	}

	return boxlite.With(ctx, opts, func(box *boxlite.Box) error {
		id, err := box.Identity(ctx)
		if err != nil {
			return formatBoxError(err)
		}
		if timeout := time.Duration(cfg.Box.ReadyTimeoutSecs) * time.Second; timeout > 0 {
			if err := box.WaitUntilReady(ctx, timeout); err != nil {
				return formatBoxError(err)
			}
		}

		if len(program) == 0 {
			fmt.Printf("%s Box %s is running\n", SuccessStyle.Render("✓"), CmdStyle.Render(shortID(id)))
			return nil
		}

		command := boxlite.Command{
			Program: program[0],
			Args:    program[1:],
			WorkDir: runWorkdir,
		}
		return runCommandInBox(ctx, box, command, runInteractive)
	}, boxlite.WithRuntime(rt), boxlite.WithLogger(sdkLogger()))
}

// runCommandInBox executes command in box, interactively or not, and maps a
// nonzero exit status to an ExitError so the process exits with it.
func runCommandInBox(ctx context.Context, box *boxlite.Box, command boxlite.Command, interactive bool) error {
	var (
		status int
		err    error
	)
	if interactive {
		forceTTY := true
		var session *boxlite.Session
		session, err = box.Attach(ctx, command, boxlite.AttachOptions{
			Interactive: &forceTTY,
			GracePeriod: time.Duration(cfg.Box.StopGraceSecs) * time.Second,
		})
		if err != nil {
			return formatBoxError(err)
		}
		status, err = session.Wait(ctx)
	} else {
		var ex *boxlite.Execution
		ex, err = box.StartExec(ctx, command)
		if err != nil {
			return formatBoxError(err)
		}
		status, err = streamExecution(ctx, ex)
	}
	if err != nil {
		return formatBoxError(err)
	}
	if status != 0 {
		code := status
		if code < 0 {
			// Killed by signal N: follow the shell convention of 128+N.
			code = 128 - code
		}
		return &ExitError{Code: code}
	}
	return nil
}

// shortID trims a full container ID down to the familiar 12 characters.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
