package engine

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadUntilStopsAtTerminator(t *testing.T) {
	input := "info nodes 100 nps 500\n\nbestmove e2e4\nnever read\n"
	s := NewSession(io.Discard, strings.NewReader(input))

	lines, err := s.ReadUntil("bestmove")
	if err != nil {
		t.Fatalf("ReadUntil failed: %v", err)
	}

	want := []string{"info nodes 100 nps 500", "bestmove e2e4"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}

	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestReadUntilMatchesSubstring(t *testing.T) {
	input := "id name fakefish\nbestmove e2e4 ponder e7e5\n"
	s := NewSession(io.Discard, strings.NewReader(input))

	lines, err := s.ReadUntil("bestmove")
	if err != nil {
		t.Fatalf("ReadUntil failed: %v", err)
	}

	if lines[len(lines)-1] != "bestmove e2e4 ponder e7e5" {
		t.Errorf("last line = %q, want the full bestmove line",
			lines[len(lines)-1])
	}
}

func TestReadUntilStreamClosed(t *testing.T) {
	input := "info depth 1\ninfo depth 2\n"
	s := NewSession(io.Discard, strings.NewReader(input))

	lines, err := s.ReadUntil("bestmove")
	if !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("err = %v, want ErrStreamClosed", err)
	}

	if len(lines) != 2 {
		t.Errorf("got %d lines before close, want 2", len(lines))
	}
}

func TestSendWritesLineAndFlushes(t *testing.T) {
	var buf bytes.Buffer

	s := NewSession(&buf, strings.NewReader(""))
	if err := s.Send("uci"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if got := buf.String(); got != "uci\n" {
		t.Errorf("wrote %q, want %q", got, "uci\n")
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestSendSurfacesWriteError(t *testing.T) {
	s := NewSession(failWriter{}, strings.NewReader(""))

	if err := s.Send("go depth 10"); err == nil {
		t.Fatal("expected error writing to a closed stream")
	}
}

func TestHandshake(t *testing.T) {
	var in bytes.Buffer

	out := "id name fakefish\nid author nobody\nuciok\n"

	s := NewSession(&in, strings.NewReader(out))
	if err := s.Handshake(); err != nil {
		t.Fatalf("Handshake failed: %v", err)
	}

	if got := in.String(); got != "uci\n" {
		t.Errorf("sent %q, want %q", got, "uci\n")
	}
}

func TestSearchSendsProtocolSequence(t *testing.T) {
	var in bytes.Buffer

	out := "info depth 5 nodes 1000 nps 200000\nbestmove e2e4\n"

	s := NewSession(&in, strings.NewReader(out))

	lines, err := s.Search(5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	wantSent := "ucinewgame\nposition startpos\ngo depth 5\n"
	if got := in.String(); got != wantSent {
		t.Errorf("sent %q, want %q", got, wantSent)
	}

	if len(lines) != 2 {
		t.Errorf("got %d lines, want 2", len(lines))
	}
}

func TestReadUntilEchoesConsumedLines(t *testing.T) {
	var echo bytes.Buffer

	s := NewSession(io.Discard, strings.NewReader("uciok\n"))
	s.SetEcho(&echo)

	if _, err := s.ReadUntil("uciok"); err != nil {
		t.Fatalf("ReadUntil failed: %v", err)
	}

	if !strings.Contains(echo.String(), "uciok") {
		t.Errorf("echo = %q, want it to contain the consumed line",
			echo.String())
	}
}
