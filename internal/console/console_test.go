// ABOUTME: Tests for the console
// ABOUTME: Tests key routing, line reads and shutdown over a pipe
package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for concurrent writes and reads
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

func newPipeConsole(t *testing.T) (*Console, *os.File, *syncBuffer) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	out := &syncBuffer{}

	c, err := New(r, out)
	if err != nil {
		t.Fatalf("failed to create console: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
		_ = w.Close()
		_ = r.Close()
	})
	return c, w, out
}

func TestPrintfAddsNewline(t *testing.T) {
	c, _, out := newPipeConsole(t)

	c.Printf("Playing: %s", "a.wav")
	c.Printf("Press any key to stop...\n")

	expected := "Playing: a.wav\nPress any key to stop...\n"
	if out.String() != expected {
		t.Errorf("expected %q, got %q", expected, out.String())
	}
}

func TestWatchKeysReceivesPress(t *testing.T) {
	c, w, _ := newPipeConsole(t)

	keys, release := c.WatchKeys()
	defer release()

	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case <-keys:
	case <-time.After(2 * time.Second):
		t.Fatal("expected key press")
	}
}

func TestReadLine(t *testing.T) {
	c, w, _ := newPipeConsole(t)

	result := make(chan string, 1)
	go func() {
		line, err := c.ReadLine(context.Background())
		if err != nil {
			t.Errorf("read line failed: %v", err)
		}
		result <- line
	}()

	// Give ReadLine time to register before input arrives
	time.Sleep(50 * time.Millisecond)
	if _, err := w.Write([]byte("continue\r\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case line := <-result:
		if line != "continue" {
			t.Errorf("expected %q, got %q", "continue", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a line")
	}
}

func TestReadLine_InputClosed(t *testing.T) {
	c, w, _ := newPipeConsole(t)
	_ = w.Close()

	_, err := c.ReadLine(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReadLine_Cancelled(t *testing.T) {
	c, _, _ := newPipeConsole(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.ReadLine(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestKeysGoToWatchersBeforeLines(t *testing.T) {
	c, _, _ := newPipeConsole(t)

	keys, release := c.WatchKeys()
	defer release()

	c.route('\n')

	select {
	case <-keys:
	default:
		t.Fatal("expected watcher to receive Enter as a key")
	}

	select {
	case line := <-c.lines:
		t.Errorf("expected no line, got %q", line)
	default:
	}
}
