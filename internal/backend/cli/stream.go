// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"io"
	"os"
	"sync"
)

// pump buffers output chunks between the engine process and a Stream
// consumer. Writes never block, so the engine process can always make
// progress even when the consumer lags or never reads; the consumer pulls
// chunks in arrival order and observes io.EOF once the producer is done
// and the buffer is drained.
type pump struct {
	mu     sync.Mutex
	chunks [][]byte
	done   bool
	notify chan struct{}
}

func newPump() *pump {
	return &pump{notify: make(chan struct{}, 1)}
}

// Write implements io.Writer for use as an exec.Cmd output sink. The chunk
// is copied because exec.Cmd reuses its copy buffer.
func (p *pump) Write(b []byte) (int, error) {
	cp := make([]byte, len(b))
	copy(cp, b)

	p.mu.Lock()
	p.chunks = append(p.chunks, cp)
	p.mu.Unlock()

	p.signal()
	return len(b), nil
}

// closeSend marks end-of-stream. Buffered chunks remain readable.
func (p *pump) closeSend() {
	p.mu.Lock()
	p.done = true
	p.mu.Unlock()
	p.signal()
}

func (p *pump) signal() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// Next returns the next buffered chunk, blocking until data arrives,
// the stream ends (io.EOF), or the context is cancelled.
func (p *pump) Next(ctx context.Context) ([]byte, error) {
	for {
		p.mu.Lock()
		if len(p.chunks) > 0 {
			chunk := p.chunks[0]
			p.chunks = p.chunks[1:]
			p.mu.Unlock()
			return chunk, nil
		}
		done := p.done
		p.mu.Unlock()

		if done {
			return nil, io.EOF
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-p.notify:
		}
	}
}

// pumpFrom drains r into the pump until read error or EOF, then marks the
// stream done. Used for PTY output, where the engine process writes to a
// file descriptor rather than an exec.Cmd sink.
func (p *pump) pumpFrom(r io.Reader) {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = p.Write(buf[:n])
		}
		if err != nil {
			// A closed PTY surfaces as EIO rather than io.EOF; both
			// mean the stream has ended.
			p.closeSend()
			return
		}
	}
}

// pipeWriter adapts an exec.Cmd stdin pipe to backend.StreamWriter.
// Close propagates end-of-input to the remote command.
type pipeWriter struct {
	io.WriteCloser
}

// ptyWriter adapts the PTY master to backend.StreamWriter. Close is a
// no-op: the descriptor is shared with the output reader and is closed
// once the process exits.
type ptyWriter struct {
	f *os.File
}

func (w *ptyWriter) Write(b []byte) (int, error) { return w.f.Write(b) }

func (w *ptyWriter) Close() error { return nil }
