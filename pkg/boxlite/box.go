// SPDX-License-Identifier: MPL-2.0

package boxlite

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"boxlite-go/internal/backend"
	"boxlite-go/internal/backend/cli"
)

// readyPollInterval is the delay between readiness probes in WaitUntilReady.
const readyPollInterval = 100 * time.Millisecond

type (
	// BoxOption configures a Box at construction.
	BoxOption func(*Box)

	// Box is a session handle for one isolated execution unit. It is
	// created with configuration only; the backing box materializes
	// lazily on the first execution request or identity query, exactly
	// once for the handle's lifetime. All methods are safe for
	// concurrent use.
	Box struct {
		opts   Options
		rt     backend.Runtime
		logger *slog.Logger

		// createOnce is the shared pending-creation token: concurrent
		// callers that trigger materialization block here until the
		// single in-flight creation completes.
		createOnce sync.Once
		handle     backend.BoxHandle
		createErr  error
		ready      atomic.Bool // set after handle is written; ID() reads through it

		stopOnce sync.Once
		stopped  atomic.Bool
	}
)

// WithRuntime sets the backend runtime. The default is a runtime driving
// whichever container engine binary is available on the system.
func WithRuntime(rt backend.Runtime) BoxOption {
	return func(b *Box) {
		b.rt = rt
	}
}

// WithLogger sets the handle's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) BoxOption {
	return func(b *Box) {
		b.logger = logger
	}
}

// New creates a Box from the given options. No backend call happens here;
// the backing box is created on first use.
func New(opts Options, boxOpts ...BoxOption) (*Box, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	b := &Box{
		opts:   opts,
		logger: slog.Default(),
	}
	for _, opt := range boxOpts {
		opt(b)
	}
	return b, nil
}

// With runs fn against a Box created from opts and guarantees Stop on
// every exit path, including panics, unless the options request Detach.
func With(ctx context.Context, opts Options, fn func(*Box) error, boxOpts ...BoxOption) error {
	b, err := New(opts, boxOpts...)
	if err != nil {
		return err
	}
	if !opts.Detach {
		defer b.Stop(ctx)
	}
	return fn(b)
}

// materialize creates the backing box, at most once per handle. Concurrent
// callers await the same in-flight creation. A creation failure is final:
// it is stored and returned to every subsequent caller without retrying.
func (b *Box) materialize(ctx context.Context) error {
	b.createOnce.Do(func() {
		rt := b.rt
		if rt == nil {
			var err error
			rt, err = cli.NewAutoDetectRuntime(cli.WithLogger(b.logger))
			if err != nil {
				b.createErr = &BackendError{Op: "detect container engine", Err: err}
				return
			}
			b.rt = rt
		}

		handle, err := rt.CreateBox(ctx, b.opts.backendConfig())
		if err != nil {
			b.createErr = &BackendError{Op: "create box", Err: err}
			return
		}
		b.handle = handle
		b.ready.Store(true)
		b.logger.Debug("box materialized", "id", handle.ID(), "image", b.opts.Image)
	})
	return b.createErr
}

// ID returns the backing box's identifier. It fails with ErrNotReady when
// the box has not materialized yet; use Identity to materialize on demand.
func (b *Box) ID() (string, error) {
	if !b.ready.Load() {
		return "", ErrNotReady
	}
	return b.handle.ID(), nil
}

// Identity materializes the backing box if needed and returns its
// identifier.
func (b *Box) Identity(ctx context.Context) (string, error) {
	if err := b.materialize(ctx); err != nil {
		return "", err
	}
	return b.handle.ID(), nil
}

// Info materializes the backing box if needed and returns its metadata.
func (b *Box) Info(ctx context.Context) (Info, error) {
	if err := b.materialize(ctx); err != nil {
		return Info{}, err
	}
	info, err := b.handle.Info(ctx)
	if err != nil {
		return Info{}, &BackendError{Op: "inspect box", Err: err}
	}
	return Info(info), nil
}

// StartExec materializes the box if needed and submits a command,
// returning a controller for the in-flight execution. Nothing about the
// handle's own state changes beyond materialization.
func (b *Box) StartExec(ctx context.Context, cmd Command) (*Execution, error) {
	if b.stopped.Load() {
		return nil, ErrStopped
	}
	if err := b.materialize(ctx); err != nil {
		return nil, err
	}

	handle, err := b.handle.Exec(ctx, backend.ExecSpec{
		Program: cmd.Program,
		Args:    cmd.Args,
		Env:     cmd.Env,
		WorkDir: cmd.WorkDir,
		TTY:     cmd.TTY,
	})
	if err != nil {
		return nil, &BackendError{Op: "exec " + cmd.Program, Err: err}
	}

	return newExecution(cmd.label(), handle), nil
}

// Run executes a command non-interactively and returns its aggregated
// result. A nonzero exit status is data in the result, never an error.
func (b *Box) Run(ctx context.Context, program string, args ...string) (*Result, error) {
	return b.RunWith(ctx, Command{Program: program, Args: args})
}

// RunWith is Run with full control over the command's environment,
// working directory, and TTY flag.
func (b *Box) RunWith(ctx context.Context, cmd Command) (*Result, error) {
	ex, err := b.StartExec(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return ex.Collect(ctx)
}

// Output runs a command and returns its standard output, enforcing a zero
// exit status: a nonzero exit is reported as an ExecError carrying the
// captured stderr.
func (b *Box) Output(ctx context.Context, program string, args ...string) (string, error) {
	cmd := Command{Program: program, Args: args}
	res, err := b.RunWith(ctx, cmd)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &ExecError{Command: cmd.label(), ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return res.Stdout, nil
}

// WaitUntilReady polls the backing box until it reports a running status,
// materializing it first if needed. The deadline is re-checked before
// every retry; expiry raises a TimeoutError naming what was awaited.
func (b *Box) WaitUntilReady(ctx context.Context, timeout time.Duration) error {
	if err := b.materialize(ctx); err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	for {
		info, err := b.handle.Info(ctx)
		if err == nil && info.Status == "running" {
			return nil
		}

		if !time.Now().Before(deadline) {
			return &TimeoutError{Waiting: "box to report running", Timeout: timeout}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readyPollInterval):
		}
	}
}

// TerminalSize reports the box's terminal dimensions by running
// `stty size` inside it. Malformed output raises a ParseError carrying
// the raw text.
func (b *Box) TerminalSize(ctx context.Context) (rows, cols int, err error) {
	out, err := b.Output(ctx, "stty", "size")
	if err != nil {
		return 0, 0, err
	}

	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, &ParseError{What: "terminal size", Raw: out}
	}
	rows, rowsErr := strconv.Atoi(fields[0])
	cols, colsErr := strconv.Atoi(fields[1])
	if rowsErr != nil || colsErr != nil {
		return 0, 0, &ParseError{What: "terminal size", Raw: out}
	}
	return rows, cols, nil
}

// Stop tears down the backing box. It is idempotent: repeated calls, and
// calls on a handle that never materialized, are no-ops. Backend teardown
// failures are logged and swallowed so that disposal paths never fail.
func (b *Box) Stop(ctx context.Context) {
	b.stopOnce.Do(func() {
		b.stopped.Store(true)

		// Claim the creation token: a handle that never materialized
		// stays that way, and an in-flight creation is awaited so its
		// box does not leak.
		b.createOnce.Do(func() { b.createErr = ErrStopped })

		if b.handle == nil {
			return
		}

		// Teardown runs on every exit path, including Ctrl-C unwinds
		// that arrive with an already-cancelled context; detach from the
		// caller's cancellation so the engine commands still execute.
		ctx = context.WithoutCancel(ctx)
		if err := b.handle.Stop(ctx, b.opts.AutoRemove); err != nil {
			b.logger.Debug("box teardown reported error", "id", b.handle.ID(), "error", err)
			return
		}
		b.logger.Debug("box stopped", "id", b.handle.ID())
	})
}

// Info is box metadata as reported by the backend.
type Info struct {
	ID        string
	Name      string
	Image     string
	Status    string
	CreatedAt time.Time
}

// label renders a command for error messages.
func (c Command) label() string {
	if len(c.Args) == 0 {
		return c.Program
	}
	return fmt.Sprintf("%s %s", c.Program, strings.Join(c.Args, " "))
}
