// Package interrupt turns Ctrl+C into a graceful shutdown of the batch
// pipeline. The first signal cancels the run context so the pipeline can
// stop at the next chunk or video boundary; a second signal within a short
// window aborts the process immediately.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ExitInterrupt is the conventional exit code for SIGINT (128 + 2).
const ExitInterrupt = 130

// interruptWindow is how close together two signals must land to count as
// a hard abort rather than an impatient repeat.
const interruptWindow = 2 * time.Second

const (
	stoppingMessage = "\nInterrupt received, finishing current work... (Ctrl+C again within 2s to abort)"
	abortMessage    = "\nAborted."
)

// Handler listens for SIGINT/SIGTERM and coordinates graceful shutdown.
// The first signal cancels the context returned by the constructor; a
// second signal within interruptWindow of the previous one exits the
// process with ExitInterrupt.
type Handler struct {
	mu            sync.Mutex
	lastInterrupt time.Time
	interrupted   bool
	stopped       bool

	cancelFunc context.CancelFunc
	done       chan struct{}

	exitFunc func(int)
	nowFunc  func() time.Time
	stderr   io.Writer
}

// Options overrides the handler's process-level dependencies for tests.
type Options struct {
	// SigCh delivers signals to the handler. When nil no listener is
	// started and the handler only relays parent cancellation.
	SigCh <-chan os.Signal

	// ExitFunc terminates the process on hard abort. Defaults to os.Exit.
	ExitFunc func(int)

	// NowFunc supplies the clock for the abort window. Defaults to time.Now.
	NowFunc func() time.Time

	// Stderr receives the interrupt notices. Defaults to os.Stderr.
	Stderr io.Writer
}

// NewHandler installs a signal listener for SIGINT and SIGTERM and returns
// the handler together with a context that is canceled on first interrupt.
func NewHandler(parent context.Context) (*Handler, context.Context) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return newHandler(parent, Options{SigCh: sigCh})
}

// NewHandlerWithOptions is NewHandler with injectable dependencies.
func NewHandlerWithOptions(parent context.Context, opts Options) (*Handler, context.Context) {
	return newHandler(parent, opts)
}

func newHandler(parent context.Context, opts Options) (*Handler, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	h := &Handler{
		cancelFunc: cancel,
		done:       make(chan struct{}),
		exitFunc:   opts.ExitFunc,
		nowFunc:    opts.NowFunc,
		stderr:     opts.Stderr,
	}
	if h.exitFunc == nil {
		h.exitFunc = os.Exit
	}
	if h.nowFunc == nil {
		h.nowFunc = time.Now
	}
	if h.stderr == nil {
		h.stderr = os.Stderr
	}

	if opts.SigCh != nil {
		go h.listen(opts.SigCh)
	}

	return h, ctx
}

func (h *Handler) listen(sigCh <-chan os.Signal) {
	for {
		select {
		case <-h.done:
			return
		case _, ok := <-sigCh:
			if !ok {
				return
			}
			if h.handleSignal() {
				return
			}
		}
	}
}

// handleSignal reports whether the listener should stop.
func (h *Handler) handleSignal() bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return true
	}
	now := h.nowFunc()
	abort := h.interrupted && now.Sub(h.lastInterrupt) <= interruptWindow
	first := !h.interrupted
	h.interrupted = true
	// A late repeat re-arms the window, so a quick double press still
	// aborts even deep into a slow drain.
	h.lastInterrupt = now
	h.mu.Unlock()

	if abort {
		fmt.Fprintln(h.stderr, abortMessage)
		h.exitFunc(ExitInterrupt)
		return true
	}

	if first {
		fmt.Fprintln(h.stderr, stoppingMessage)
	}
	h.cancelFunc()
	return false
}

// WasInterrupted reports whether at least one signal was received.
func (h *Handler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}

// Stop detaches the handler from the signal stream. Signals delivered
// after Stop get the default process behavior again.
func (h *Handler) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	close(h.done)
}
