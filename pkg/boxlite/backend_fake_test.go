// SPDX-License-Identifier: MPL-2.0

package boxlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"boxlite-go/internal/backend"
)

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

// fakeRuntime is a scriptable backend.Runtime for unit tests. Its fakeBox
// replies to execs from a queue of scripted executions.
type fakeRuntime struct {
	mu          sync.Mutex
	createCalls int
	createDelay time.Duration
	createErr   error
	box         *fakeBox
}

func newFakeRuntime(box *fakeBox) *fakeRuntime {
	return &fakeRuntime{box: box}
}

func (r *fakeRuntime) CreateBox(ctx context.Context, cfg backend.BoxConfig) (backend.BoxHandle, error) {
	r.mu.Lock()
	r.createCalls++
	delay := r.createDelay
	r.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.box, nil
}

func (r *fakeRuntime) Lookup(ctx context.Context, name string) (backend.BoxHandle, bool, error) {
	if r.box != nil && r.box.name == name {
		return r.box, true, nil
	}
	return nil, false, nil
}

func (r *fakeRuntime) CreateCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createCalls
}

// fakeBox is a scriptable backend.BoxHandle. Each Exec pops the next
// scripted execution.
type fakeBox struct {
	mu          sync.Mutex
	id          string
	name        string
	status      string
	execs       []backend.ExecutionHandle
	execSpecs   []backend.ExecSpec
	execErr     error
	stopCalls   int
	stopCtxErrs []error
	removed     bool
}

func newFakeBox(id string, execs ...backend.ExecutionHandle) *fakeBox {
	return &fakeBox{id: id, status: "running", execs: execs}
}

func (b *fakeBox) ID() string { return b.id }

func (b *fakeBox) Info(ctx context.Context) (backend.BoxInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return backend.BoxInfo{ID: b.id, Name: b.name, Status: b.status}, nil
}

func (b *fakeBox) Exec(ctx context.Context, spec backend.ExecSpec) (backend.ExecutionHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.execSpecs = append(b.execSpecs, spec)
	if b.execErr != nil {
		return nil, b.execErr
	}
	if len(b.execs) == 0 {
		return nil, errors.New("fakeBox: no scripted execution left")
	}
	ex := b.execs[0]
	b.execs = b.execs[1:]
	return ex, nil
}

func (b *fakeBox) Stop(ctx context.Context, remove bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopCalls++
	b.stopCtxErrs = append(b.stopCtxErrs, ctx.Err())
	b.removed = remove
	b.status = "exited"
	return nil
}

func (b *fakeBox) StopCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopCalls
}

// StopCtxErrs returns the context error observed at each Stop call.
func (b *fakeBox) StopCtxErrs() []error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]error(nil), b.stopCtxErrs...)
}

func (b *fakeBox) LastExecSpec() backend.ExecSpec {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.execSpecs) == 0 {
		return backend.ExecSpec{}
	}
	return b.execSpecs[len(b.execSpecs)-1]
}

// scriptedStream replays a fixed chunk sequence. A non-nil err replaces
// io.EOF at the end, simulating a stream that dies mid-read. chunkDelay
// spaces chunks out in time for forwarding tests.
type scriptedStream struct {
	mu         sync.Mutex
	chunks     [][]byte
	err        error
	chunkDelay time.Duration
}

func streamOf(chunks ...string) *scriptedStream {
	s := &scriptedStream{}
	for _, c := range chunks {
		s.chunks = append(s.chunks, []byte(c))
	}
	return s
}

func (s *scriptedStream) Next(ctx context.Context) ([]byte, error) {
	if s.chunkDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.chunkDelay):
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.chunks) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, nil
}

// captureWriter records writes. Used as the scripted stdin endpoint.
type captureWriter struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *captureWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *captureWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(w.data)
}

func (w *captureWriter) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// fakeExec is a scriptable backend.ExecutionHandle. Nil streams are
// absent. exit must be closed (or pre-closed via exitNow) before Wait
// returns.
type fakeExec struct {
	stdin  *captureWriter
	stdout backend.Stream
	stderr backend.Stream

	status  backend.ExitStatus
	waitErr error
	exit    chan struct{}
}

func newFakeExec(status backend.ExitStatus) *fakeExec {
	e := &fakeExec{status: status, exit: make(chan struct{})}
	close(e.exit)
	return e
}

// newPendingExec returns an execution whose Wait blocks until finish().
func newPendingExec(status backend.ExitStatus) (e *fakeExec, finish func()) {
	e = &fakeExec{status: status, exit: make(chan struct{})}
	var once sync.Once
	return e, func() { once.Do(func() { close(e.exit) }) }
}

func (e *fakeExec) Stdin() (backend.StreamWriter, bool) {
	if e.stdin == nil {
		return nil, false
	}
	return e.stdin, true
}

func (e *fakeExec) Stdout() (backend.Stream, bool) {
	if e.stdout == nil {
		return nil, false
	}
	return e.stdout, true
}

func (e *fakeExec) Stderr() (backend.Stream, bool) {
	if e.stderr == nil {
		return nil, false
	}
	return e.stderr, true
}

func (e *fakeExec) Wait(ctx context.Context) (backend.ExitStatus, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-e.exit:
	}
	if e.waitErr != nil {
		return 0, e.waitErr
	}
	return e.status, nil
}

// resizableExec adds the optional resize capability to fakeExec.
type resizableExec struct {
	*fakeExec
	mu         sync.Mutex
	rows, cols int
}

func (e *resizableExec) Resize(rows, cols int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows, e.cols = rows, cols
	return nil
}

func (e *resizableExec) Size() (rows, cols int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rows, e.cols
}

// fakeTerminal is a scriptable terminalControl.
type fakeTerminal struct {
	mu           sync.Mutex
	isTTY        bool
	raw          bool
	enableCalls  int
	restoreCalls int
	enableErr    error
	rows, cols   int
}

func (t *fakeTerminal) IsTerminal() bool { return t.isTTY }

func (t *fakeTerminal) EnableRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.enableErr != nil {
		return t.enableErr
	}
	if t.raw {
		return nil
	}
	t.raw = true
	t.enableCalls++
	return nil
}

func (t *fakeTerminal) DisableRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.raw {
		return nil
	}
	t.raw = false
	t.restoreCalls++
	return nil
}

func (t *fakeTerminal) Size() (rows, cols int, err error) {
	return t.rows, t.cols, nil
}

func (t *fakeTerminal) Raw() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.raw
}

func (t *fakeTerminal) RestoreCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.restoreCalls
}
