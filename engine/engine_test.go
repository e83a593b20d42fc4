package engine

import (
	"io"
	"log/slog"
	"runtime"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartMissingBinary(t *testing.T) {
	c := &Controller{Logger: testLogger(), Settle: time.Millisecond}

	if _, err := c.Start("/nonexistent/engine/binary"); err == nil {
		t.Fatal("expected spawn error for missing binary")
	}
}

func TestTerminateWithoutStart(t *testing.T) {
	c := &Controller{Logger: testLogger()}

	done := make(chan struct{})
	go func() {
		c.Terminate()
		c.Terminate()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Terminate without a process should return immediately")
	}
}

func TestStartTerminateLifecycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/cat as a stand-in engine")
	}

	c := &Controller{
		Logger:          testLogger(),
		Settle:          time.Millisecond,
		ShutdownTimeout: 2 * time.Second,
	}

	p, err := c.Start("/bin/cat")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if p.Stdin() == nil || p.Stdout() == nil {
		t.Fatal("expected attached pipes")
	}

	if _, err := c.Start("/bin/cat"); err == nil {
		t.Error("expected error starting a second engine on one controller")
	}

	c.Terminate()

	// Idempotent: the handle is gone after the first call.
	c.Terminate()

	if _, err := io.WriteString(p.Stdin(), "uci\n"); err == nil {
		t.Error("expected writes to fail after termination")
	}
}
