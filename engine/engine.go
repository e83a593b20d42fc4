// Package engine manages a UCI chess engine subprocess and the
// line-oriented command protocol spoken over its pipes.
package engine

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSettle is the grace period after spawning before the
	// engine is considered ready for the handshake. This is a settle
	// heuristic, not a readiness protocol.
	DefaultSettle = 100 * time.Millisecond

	// DefaultShutdownTimeout bounds how long Terminate waits for the
	// engine to exit after SIGTERM before killing it.
	DefaultShutdownTimeout = 2 * time.Second
)

// Process is a live engine subprocess with its attached pipes. It is
// created by Controller.Start and owned by that Controller until
// terminated; once the process is gone, writes to its stdin fail.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	drain  *errgroup.Group
}

// Stdin returns the stream commands are written to.
func (p *Process) Stdin() io.Writer { return p.stdin }

// Stdout returns the stream engine responses are read from.
func (p *Process) Stdout() io.Reader { return p.stdout }

// Controller owns the lifecycle of at most one engine process at a
// time. Terminate may be called from a different goroutine than the
// one driving the protocol, e.g. a signal handler.
type Controller struct {
	Logger *slog.Logger

	// Settle overrides DefaultSettle when positive.
	Settle time.Duration

	// ShutdownTimeout overrides DefaultShutdownTimeout when positive.
	ShutdownTimeout time.Duration

	mu   sync.Mutex
	proc *Process
}

func (c *Controller) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return slog.Default()
}

// Start spawns the engine at path with stdin, stdout and stderr
// pipes attached, then waits out the settle period. Engine stderr is
// drained in the background and logged line by line.
func (c *Controller) Start(path string) (*Process, error) {
	p, err := c.spawn(path)
	if err != nil {
		return nil, err
	}

	settle := c.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}

	time.Sleep(settle)

	return p, nil
}

func (c *Controller) spawn(path string) (*Process, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.proc != nil {
		return nil, fmt.Errorf("engine already running")
	}

	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("attach stdin: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("attach stdout: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("attach stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine %s: %w", path, err)
	}

	logger := c.log()
	logger.Info("engine started",
		slog.String("path", path),
		slog.Int("pid", cmd.Process.Pid),
	)

	drain := new(errgroup.Group)
	drain.Go(func() error {
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			logger.Warn("engine stderr", slog.String("line", sc.Text()))
		}

		return sc.Err()
	})

	p := &Process{cmd: cmd, stdin: stdin, stdout: stdout, drain: drain}
	c.proc = p

	return p, nil
}

// Terminate shuts the engine down: a best-effort quit command, then
// SIGTERM, then SIGKILL once ShutdownTimeout passes. It always
// returns, and calling it again (or without a prior successful Start)
// is a no-op.
func (c *Controller) Terminate() {
	c.mu.Lock()
	p := c.proc
	c.proc = nil
	c.mu.Unlock()

	if p == nil {
		return
	}

	logger := c.log()

	// Ask the engine to exit on its own terms first. The write fails
	// if the process is already gone, which is fine.
	_, _ = io.WriteString(p.stdin, "quit\n")
	_ = p.stdin.Close()

	_ = p.cmd.Process.Signal(syscall.SIGTERM)

	timeout := c.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("engine did not exit, killing",
			slog.Int("pid", p.cmd.Process.Pid),
		)

		_ = p.cmd.Process.Kill()
		<-done
	}

	if err := p.drain.Wait(); err != nil {
		logger.Warn("engine stderr read failed",
			slog.String("error", err.Error()),
		)
	}

	logger.Info("engine terminated")
}
