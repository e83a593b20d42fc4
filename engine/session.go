package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrStreamClosed reports that the engine closed its output stream
// before the expected terminator line arrived.
var ErrStreamClosed = errors.New("engine output stream closed")

// Session is a synchronous command/response exchange over an engine's
// text streams. It is driven from a single goroutine; there is no
// internal locking.
type Session struct {
	w    *bufio.Writer
	scan *bufio.Scanner
	echo io.Writer
}

// NewSession wraps the engine's input and output streams. Tests can
// pass plain buffers.
func NewSession(w io.Writer, r io.Reader) *Session {
	return &Session{
		w:    bufio.NewWriter(w),
		scan: bufio.NewScanner(r),
	}
}

// SetEcho mirrors every line consumed from the engine to out.
func (s *Session) SetEcho(out io.Writer) { s.echo = out }

// Send writes one command line to the engine and flushes immediately.
// A failed write means the process has exited or closed its stdin;
// the session is unusable after that.
func (s *Session) Send(text string) error {
	if _, err := s.w.WriteString(text + "\n"); err != nil {
		return fmt.Errorf("send %q: %w", text, err)
	}

	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("send %q: %w", text, err)
	}

	return nil
}

// ReadUntil reads lines from the engine until one contains terminator
// as a substring, returning every non-empty line read including the
// terminating one. Empty lines are discarded. There is no timeout: if
// the engine never emits the terminator this blocks until its output
// stream closes, which surfaces as ErrStreamClosed together with the
// lines read so far.
func (s *Session) ReadUntil(terminator string) ([]string, error) {
	var lines []string

	for s.scan.Scan() {
		line := strings.TrimSpace(s.scan.Text())
		if line == "" {
			continue
		}

		if s.echo != nil {
			fmt.Fprintf(s.echo, "engine: %s\n", line)
		}

		lines = append(lines, line)

		if strings.Contains(line, terminator) {
			return lines, nil
		}
	}

	if err := s.scan.Err(); err != nil {
		return lines, fmt.Errorf("read engine output: %w", err)
	}

	return lines, fmt.Errorf("waiting for %q: %w", terminator, ErrStreamClosed)
}

// Handshake performs the initial uci/uciok exchange. It must complete
// before any search is started.
func (s *Session) Handshake() error {
	if err := s.Send("uci"); err != nil {
		return err
	}

	_, err := s.ReadUntil("uciok")

	return err
}

// Search runs one fixed-depth search from the standard starting
// position and returns the raw output lines up to and including the
// bestmove line.
func (s *Session) Search(depth int) ([]string, error) {
	cmds := []string{
		"ucinewgame",
		"position startpos",
		fmt.Sprintf("go depth %d", depth),
	}

	for _, cmd := range cmds {
		if err := s.Send(cmd); err != nil {
			return nil, err
		}
	}

	return s.ReadUntil("bestmove")
}
