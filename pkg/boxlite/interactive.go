// SPDX-License-Identifier: MPL-2.0

package boxlite

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"boxlite-go/internal/backend"
)

const (
	// inputPollInterval bounds how long the input forwarder keeps running
	// after the remote command exits while no input is arriving.
	inputPollInterval = 100 * time.Millisecond

	// defaultGracePeriod bounds how long Session.Stop waits for the
	// forwarders to wind down before tearing the box down anyway.
	defaultGracePeriod = 2 * time.Second

	// inputChunkSize is the read size of the local input pump.
	inputChunkSize = 4096
)

type (
	// AttachOptions configures an interactive session. The zero value
	// attaches to the process's own standard streams, auto-detects
	// whether raw mode applies, and uses the default grace period.
	AttachOptions struct {
		// Interactive forces raw-mode handling on or off. When nil, the
		// session enables raw mode exactly when local stdin is a TTY.
		Interactive *bool

		// Stdin, Stdout and Stderr override the local endpoints. Each
		// defaults to the corresponding os stream when nil.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer

		// GracePeriod bounds Session.Stop's wait for in-flight
		// forwarders. Zero means defaultGracePeriod.
		GracePeriod time.Duration
	}

	// Session is a live bidirectional bridge between the local terminal
	// and a command running inside a box. It owns the local terminal's
	// raw-mode state and guarantees restoration on every exit path.
	Session struct {
		box    *Box
		exec   *Execution
		term   terminalControl
		logger *slog.Logger

		raw   bool
		grace time.Duration

		// exited is written only by the exit-wait goroutine. The input
		// forwarder reads it so that an idle local stdin cannot keep the
		// session alive past the remote command's death.
		exited     atomic.Bool
		done       chan struct{}
		status     int
		waitErr    error
		forwarders sync.WaitGroup

		stopOnce sync.Once
	}
)

// Attach starts cmd inside the box and bridges it to the local terminal.
// When the session is interactive the command runs under a remote PTY,
// the local terminal switches to raw mode, and the remote PTY is resized
// to the local dimensions. The terminal is restored even when attachment
// fails partway through.
func (b *Box) Attach(ctx context.Context, cmd Command, opts AttachOptions) (*Session, error) {
	return b.attach(ctx, cmd, opts, newStdinTerminal())
}

// Shell attaches an interactive login shell to the box.
func (b *Box) Shell(ctx context.Context, opts AttachOptions) (*Session, error) {
	return b.Attach(ctx, Command{Program: "/bin/sh"}, opts)
}

func (b *Box) attach(ctx context.Context, cmd Command, opts AttachOptions, tc terminalControl) (*Session, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = defaultGracePeriod
	}

	interactive := tc.IsTerminal()
	if opts.Interactive != nil {
		interactive = *opts.Interactive
	}
	if interactive {
		cmd.TTY = true
	}

	// Raw mode needs a real local terminal. A forced-interactive session
	// on piped stdin still gets a remote PTY but leaves the local side
	// untouched.
	raw := interactive && tc.IsTerminal()

	ex, err := b.StartExec(ctx, cmd)
	if err != nil {
		return nil, err
	}

	s := &Session{
		box:    b,
		exec:   ex,
		term:   tc,
		logger: b.logger,
		raw:    raw,
		grace:  opts.GracePeriod,
		done:   make(chan struct{}),
	}

	if raw {
		if err := tc.EnableRaw(); err != nil {
			return nil, &BackendError{Op: "enable raw mode", Err: err}
		}
		s.resizeToLocal()
	}

	// Exit-wait: the sole writer of exited. Runs independent of ctx so a
	// cancelled caller cannot orphan the status.
	go func() {
		s.status, s.waitErr = ex.Wait(context.Background())
		s.exited.Store(true)
		close(s.done)
	}()

	if stdout, ok := ex.Stdout(); ok {
		s.forwarders.Add(1)
		go func() {
			defer s.forwarders.Done()
			forward(ctx, stdout, opts.Stdout)
		}()
	}
	if stderr, ok := ex.Stderr(); ok {
		s.forwarders.Add(1)
		go func() {
			defer s.forwarders.Done()
			forward(ctx, stderr, opts.Stderr)
		}()
	}
	if stdin, ok := ex.Stdin(); ok {
		input := pumpReads(opts.Stdin)
		s.forwarders.Add(1)
		go func() {
			defer s.forwarders.Done()
			s.forwardInput(input, stdin)
		}()
	}

	return s, nil
}

// resizeToLocal mirrors the local terminal dimensions onto the remote
// PTY. Backends without resize support, and terminals without a
// measurable size, are skipped silently.
func (s *Session) resizeToLocal() {
	resizer, ok := s.exec.handle.(backend.Resizer)
	if !ok {
		return
	}
	rows, cols, err := s.term.Size()
	if err != nil {
		s.logger.Debug("terminal size unavailable", "error", err)
		return
	}
	if err := resizer.Resize(rows, cols); err != nil {
		s.logger.Debug("remote resize failed", "error", err)
	}
}

// pumpReads turns a blocking reader into a channel of chunks. The channel
// closes on any read error. The pump goroutine itself cannot be unblocked
// from a pending Read; it is abandoned when the session ends, which is
// harmless for process-lifetime stdin.
func pumpReads(r io.Reader) <-chan []byte {
	ch := make(chan []byte)
	go func() {
		defer close(ch)
		for {
			buf := make([]byte, inputChunkSize)
			n, err := r.Read(buf)
			if n > 0 {
				ch <- buf[:n]
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

// forwardInput relays local input chunks to the remote command. Between
// chunks it wakes periodically to notice remote exit, so a session whose
// user never types again still winds down promptly.
func (s *Session) forwardInput(input <-chan []byte, stdin StreamWriter) {
	ticker := time.NewTicker(inputPollInterval)
	defer ticker.Stop()

	for {
		select {
		case chunk, ok := <-input:
			if !ok {
				// Local end-of-input: propagate so the remote command
				// sees its stdin close.
				if err := stdin.Close(); err != nil {
					s.logger.Debug("stdin close failed", "error", err)
				}
				return
			}
			if s.exited.Load() {
				return
			}
			if _, err := stdin.Write(chunk); err != nil {
				return
			}
		case <-ticker.C:
			if s.exited.Load() {
				return
			}
		}
	}
}

// forward copies a remote stream to a local writer until the stream ends.
// Stream and write errors end the forward silently.
func forward(ctx context.Context, stream Stream, w io.Writer) {
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

// restore puts the local terminal back into its saved state. Safe to call
// any number of times and on sessions that never went raw.
func (s *Session) restore() {
	if !s.raw {
		return
	}
	if err := s.term.DisableRaw(); err != nil {
		s.logger.Debug("terminal restore failed", "error", err)
	}
}

// Wait blocks until the remote command exits, restores the terminal, and
// returns the exit status. Cancelling ctx abandons the wait without
// tearing the session down.
func (s *Session) Wait(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-s.done:
	}
	s.restore()
	if s.waitErr != nil {
		return 0, s.waitErr
	}
	return s.status, nil
}

// Stop ends the session: the terminal is restored first so the user's
// shell is never left raw, the forwarders get a bounded grace period to
// flush, and the box is then torn down unconditionally. Stop is
// idempotent.
func (s *Session) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		s.restore()

		flushed := make(chan struct{})
		go func() {
			s.forwarders.Wait()
			close(flushed)
		}()
		select {
		case <-flushed:
		case <-time.After(s.grace):
			s.logger.Debug("forwarders still draining after grace period", "grace", s.grace)
		}

		s.box.Stop(ctx)
	})
}
