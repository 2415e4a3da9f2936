// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"boxlite-go/internal/backend"
	"boxlite-go/internal/backend/cli"
	"boxlite-go/internal/config"
	"boxlite-go/internal/issue"
	"boxlite-go/pkg/boxlite"

	"github.com/joho/godotenv"
)

// engineRuntime builds the container runtime selected by configuration.
// An unavailable engine renders the guidance card before failing.
func engineRuntime() (*cli.Runtime, error) {
	logger := sdkLogger()

	if cfg.ContainerEngine == "" || cfg.ContainerEngine == config.ContainerEngineAuto {
		rt, err := cli.NewAutoDetectRuntime(cli.WithLogger(logger))
		if err != nil {
			printIssue(issue.EngineNotFoundId)
			return nil, err
		}
		return rt, nil
	}

	engine, err := cli.NewEngine(cli.EngineType(cfg.ContainerEngine))
	if err != nil {
		printIssue(issue.EngineNotFoundId)
		return nil, err
	}
	return cli.NewRuntime(engine, cli.WithLogger(logger)), nil
}

// lookupBox resolves a live box by name.
func lookupBox(ctx context.Context, name string) (backend.BoxHandle, error) {
	rt, err := engineRuntime()
	if err != nil {
		return nil, err
	}

	handle, found, err := rt.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		printIssue(issue.BoxNotFoundId)
		return nil, fmt.Errorf("no box named %q is running", name)
	}
	return handle, nil
}

// formatBoxError renders the guidance card matching an SDK error before
// handing the error back for display.
func formatBoxError(err error) error {
	if errors.Is(err, boxlite.ErrExec) {
		printIssue(issue.ExecFailedId)
	}
	return err
}

// printIssue renders a guidance card for the given issue to stderr.
func printIssue(id issue.Id) {
	scheme := "dark"
	if cfg.UI.ColorScheme == config.ColorSchemeLight {
		scheme = "light"
	}
	if rendered, err := issue.Get(id).Render(scheme); err == nil {
		fmt.Fprint(os.Stderr, rendered)
	}
}

// adoptRuntime satisfies backend.Runtime with an already-live box, so the
// SDK's Box handle can drive executions against it. CreateBox hands back
// the adopted handle instead of creating anything.
type adoptRuntime struct {
	handle backend.BoxHandle
}

func (r adoptRuntime) CreateBox(context.Context, backend.BoxConfig) (backend.BoxHandle, error) {
	return r.handle, nil
}

func (r adoptRuntime) Lookup(ctx context.Context, name string) (backend.BoxHandle, bool, error) {
	info, err := r.handle.Info(ctx)
	if err != nil {
		return nil, false, err
	}
	if info.Name != name {
		return nil, false, nil
	}
	return r.handle, true, nil
}

// adoptedBox wraps a live backend handle in an SDK Box so exec and shell
// can reuse the Box-level execution surface against it.
func adoptedBox(ctx context.Context, handle backend.BoxHandle) (*boxlite.Box, error) {
	info, err := handle.Info(ctx)
	if err != nil {
		return nil, err
	}
	opts := boxlite.Options{Image: info.Image, Name: info.Name}
	return boxlite.New(opts, boxlite.WithRuntime(adoptRuntime{handle: handle}), boxlite.WithLogger(sdkLogger()))
}

// collectEnv merges an optional dotenv file with KEY=VALUE flag entries.
// Flag entries win over file entries.
func collectEnv(envFile string, pairs []string) (map[string]string, error) {
	env := map[string]string{}

	if envFile != "" {
		fileEnv, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %q: %w", envFile, err)
		}
		for k, v := range fileEnv {
			env[k] = v
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid environment entry %q, expected KEY=VALUE", pair)
		}
		env[key] = value
	}

	if len(env) == 0 {
		return nil, nil
	}
	return env, nil
}

// parseVolume parses HOST:GUEST[:ro] into a volume mount.
func parseVolume(s string) (boxlite.VolumeMount, error) {
	parts := strings.Split(s, ":")
	switch {
	case len(parts) == 2:
		return boxlite.VolumeMount{HostPath: parts[0], GuestPath: parts[1]}, nil
	case len(parts) == 3 && parts[2] == "ro":
		return boxlite.VolumeMount{HostPath: parts[0], GuestPath: parts[1], ReadOnly: true}, nil
	default:
		return boxlite.VolumeMount{}, fmt.Errorf("invalid volume %q, expected HOST:GUEST[:ro]", s)
	}
}

// parsePort parses [HOST:]GUEST[/PROTOCOL] into a port mapping.
func parsePort(s string) (boxlite.PortMapping, error) {
	var mapping boxlite.PortMapping

	spec, proto, hasProto := strings.Cut(s, "/")
	if hasProto {
		mapping.Protocol = proto
	}

	host, guest, hasHost := strings.Cut(spec, ":")
	if !hasHost {
		guest = spec
	} else {
		hostPort, err := strconv.Atoi(host)
		if err != nil {
			return boxlite.PortMapping{}, fmt.Errorf("invalid host port in %q: %w", s, err)
		}
		mapping.HostPort = hostPort
	}

	guestPort, err := strconv.Atoi(guest)
	if err != nil {
		return boxlite.PortMapping{}, fmt.Errorf("invalid guest port in %q: %w", s, err)
	}
	mapping.GuestPort = guestPort
	return mapping, nil
}

// streamExecution forwards the execution's output to the process streams
// and returns its exit status once both the drains and the wait are done.
func streamExecution(ctx context.Context, ex *boxlite.Execution) (int, error) {
	var wg sync.WaitGroup

	if stream, ok := ex.Stdout(); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			copyStream(ctx, stream, os.Stdout)
		}()
	}
	if stream, ok := ex.Stderr(); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			copyStream(ctx, stream, os.Stderr)
		}()
	}

	status, err := ex.Wait(ctx)
	wg.Wait()
	return status, err
}

// copyStream drains a pull-based stream into w. Read and write errors end
// the copy; partial output has already reached its destination.
func copyStream(ctx context.Context, stream boxlite.Stream, w io.Writer) {
	for {
		chunk, err := stream.Next(ctx)
		if len(chunk) > 0 {
			if _, werr := w.Write(chunk); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
