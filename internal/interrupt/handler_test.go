package interrupt_test

// Notes:
// - All tests inject dependencies via NewHandlerWithOptions for
//   deterministic behavior; the clock is driven through NowFunc.
// - ctx.Done() is used to confirm the first signal was processed before
//   sending the next one.
// - The handler writes to stderr from its listen goroutine and
//   bytes.Buffer is not thread-safe, hence syncBuffer.

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joselrodrigues/audiototext/internal/interrupt"
)

// syncBuffer is a thread-safe bytes.Buffer for capturing stderr.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Contains(substr string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Contains(b.buf.Bytes(), []byte(substr))
}

// ---------------------------------------------------------------------------
// TestNewHandler - Default constructor
// ---------------------------------------------------------------------------

func TestNewHandler(t *testing.T) {
	t.Parallel()

	// NewHandler installs a real signal listener, so we only verify it
	// returns valid objects and can be stopped without panic.
	h, ctx := interrupt.NewHandler(context.Background())

	if h == nil {
		t.Fatal("NewHandler returned nil handler")
	}
	if ctx == nil {
		t.Fatal("NewHandler returned nil context")
	}

	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled before any signal")
	default:
	}

	if h.WasInterrupted() {
		t.Error("WasInterrupted should be false before any signal")
	}

	h.Stop()
}

// ---------------------------------------------------------------------------
// TestHandler_FirstInterrupt - Single signal cancels context
// ---------------------------------------------------------------------------

func TestHandler_FirstInterrupt(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	var stderr syncBuffer

	h, ctx := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{
		SigCh:  sigCh,
		Stderr: &stderr,
	})
	defer h.Stop()

	sigCh <- os.Interrupt

	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("context should be canceled after first signal")
	}

	if !h.WasInterrupted() {
		t.Error("WasInterrupted should be true after first signal")
	}

	if !stderr.Contains("Interrupt received") {
		t.Errorf("stderr should announce the graceful stop, got: %q", stderr.String())
	}
	if !stderr.Contains("Ctrl+C again") {
		t.Errorf("stderr should mention the abort hint, got: %q", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestHandler_DoubleInterruptWithinWindow - Triggers abort
// ---------------------------------------------------------------------------

func TestHandler_DoubleInterruptWithinWindow(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	var stderr syncBuffer
	var exitCode atomic.Int32
	exitCode.Store(-1) // Sentinel: not called

	// Mock time: first signal at T=0, second at T=1s (within 2s window)
	callCount := 0
	var mu sync.Mutex
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mockNow := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		callCount++
		if callCount == 1 {
			return baseTime
		}
		return baseTime.Add(1 * time.Second)
	}

	h, ctx := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{
		SigCh:    sigCh,
		ExitFunc: func(code int) { exitCode.Store(int32(code)) },
		NowFunc:  mockNow,
		Stderr:   &stderr,
	})
	defer h.Stop()

	sigCh <- os.Interrupt

	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("context should be canceled after first signal")
	}

	sigCh <- os.Interrupt

	deadline := time.After(100 * time.Millisecond)
	for exitCode.Load() == -1 {
		select {
		case <-deadline:
			t.Fatal("exitFunc should have been called")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	if got := exitCode.Load(); got != 130 {
		t.Errorf("exitFunc called with %d, want 130", got)
	}

	if !stderr.Contains("Aborted.") {
		t.Errorf("stderr should contain 'Aborted.', got: %q", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestHandler_RepeatOutsideWindowRearms - Late repeat arms a fresh window
// ---------------------------------------------------------------------------

func TestHandler_RepeatOutsideWindowRearms(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 3)
	var stderr syncBuffer
	var exitCode atomic.Int32
	exitCode.Store(-1)

	// Mock time: signals at T=0, T=3s, T=3.5s. The second lands outside
	// the 2s window and must not abort, but it re-arms the window so the
	// third one does.
	callCount := 0
	var mu sync.Mutex
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mockNow := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		callCount++
		switch callCount {
		case 1:
			return baseTime
		case 2:
			return baseTime.Add(3 * time.Second)
		default:
			return baseTime.Add(3500 * time.Millisecond)
		}
	}

	h, ctx := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{
		SigCh:    sigCh,
		ExitFunc: func(code int) { exitCode.Store(int32(code)) },
		NowFunc:  mockNow,
		Stderr:   &stderr,
	})
	defer h.Stop()

	sigCh <- os.Interrupt

	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("context should be canceled after first signal")
	}

	// Second signal, 3s later: outside the window, no abort.
	sigCh <- os.Interrupt
	time.Sleep(50 * time.Millisecond)

	if exitCode.Load() != -1 {
		t.Fatal("exitFunc should NOT be called for a repeat outside the window")
	}
	if !h.WasInterrupted() {
		t.Error("WasInterrupted should be true")
	}

	// Third signal, 0.5s after the second: inside the re-armed window.
	sigCh <- os.Interrupt

	deadline := time.After(100 * time.Millisecond)
	for exitCode.Load() == -1 {
		select {
		case <-deadline:
			t.Fatal("exitFunc should have been called after the re-armed double press")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	if got := exitCode.Load(); got != 130 {
		t.Errorf("exitFunc called with %d, want 130", got)
	}

	// The graceful notice is printed only once, on the first signal.
	if got := strings.Count(stderr.String(), "Interrupt received"); got != 1 {
		t.Errorf("graceful notice printed %d times, want 1; stderr: %q", got, stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestHandler_Stop - Prevents further signal processing
// ---------------------------------------------------------------------------

func TestHandler_Stop(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)

	h, _ := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{
		SigCh: sigCh,
	})

	h.Stop()

	// Signal after Stop is ignored.
	sigCh <- os.Interrupt
	time.Sleep(50 * time.Millisecond)

	if h.WasInterrupted() {
		t.Error("WasInterrupted should be false after Stop")
	}

	// Stop again should not panic (idempotent).
	h.Stop()
}

// ---------------------------------------------------------------------------
// TestHandler_NilSigCh - No listener started
// ---------------------------------------------------------------------------

func TestHandler_NilSigCh(t *testing.T) {
	t.Parallel()

	h, ctx := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{
		SigCh: nil,
	})
	defer h.Stop()

	if ctx == nil {
		t.Fatal("context should not be nil")
	}

	if h.WasInterrupted() {
		t.Error("WasInterrupted should be false with nil SigCh")
	}

	h.Stop()
}

// ---------------------------------------------------------------------------
// TestHandler_ChannelClosed - Listener exits gracefully
// ---------------------------------------------------------------------------

func TestHandler_ChannelClosed(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)

	h, _ := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{
		SigCh: sigCh,
	})
	defer h.Stop()

	close(sigCh)
	time.Sleep(50 * time.Millisecond)

	if h.WasInterrupted() {
		t.Error("WasInterrupted should be false when channel closed without signal")
	}
}

// ---------------------------------------------------------------------------
// TestHandler_ParentContextCanceled - Handler respects parent
// ---------------------------------------------------------------------------

func TestHandler_ParentContextCanceled(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	parentCtx, parentCancel := context.WithCancel(context.Background())

	h, ctx := interrupt.NewHandlerWithOptions(parentCtx, interrupt.Options{
		SigCh: sigCh,
	})
	defer h.Stop()

	parentCancel()

	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
		t.Error("handler context should be canceled when parent is canceled")
	}

	// Canceled by parent, not by a signal.
	if h.WasInterrupted() {
		t.Error("WasInterrupted should be false when canceled by parent")
	}
}

// ---------------------------------------------------------------------------
// TestExitInterrupt - Verify the exported exit code
// ---------------------------------------------------------------------------

func TestExitInterrupt(t *testing.T) {
	t.Parallel()

	// 128 + SIGINT is the Unix convention.
	if interrupt.ExitInterrupt != 130 {
		t.Errorf("ExitInterrupt = %d, want 130", interrupt.ExitInterrupt)
	}
}

// ---------------------------------------------------------------------------
// TestHandler_ConcurrentAccess - Thread safety
// ---------------------------------------------------------------------------

func TestHandler_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 10)
	var stderr syncBuffer

	h, _ := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{
		SigCh:    sigCh,
		ExitFunc: func(code int) {}, // Don't exit
		Stderr:   &stderr,
	})
	defer h.Stop()

	var wg sync.WaitGroup
	const goroutines = 10

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = h.WasInterrupted()
			}
		}()
	}

	for i := 0; i < 3; i++ {
		sigCh <- os.Interrupt
		time.Sleep(10 * time.Millisecond)
	}

	wg.Wait()
}
