// ABOUTME: Tests for the TUI console wrapper
// ABOUTME: Drives the bubbletea program through a pipe instead of a terminal
package ui

import (
	"context"
	"io"
	"testing"
	"time"
)

func TestTUIKeyPressReachesWatcher(t *testing.T) {
	in, w := io.Pipe()
	tui := NewHeadless(in, io.Discard)
	defer func() {
		_ = w.Close()
		_ = tui.Close()
	}()

	keys, release := tui.WatchKeys()
	defer release()

	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}

	select {
	case <-keys:
	case <-time.After(2 * time.Second):
		t.Fatal("expected key press to reach watcher")
	}
}

func TestTUIReadLine(t *testing.T) {
	in, w := io.Pipe()
	tui := NewHeadless(in, io.Discard)
	defer func() {
		_ = w.Close()
		_ = tui.Close()
	}()

	result := make(chan error, 1)
	go func() {
		_, err := tui.ReadLine(context.Background())
		result <- err
	}()

	// wait for the prompt to be registered before pressing enter
	deadline := time.Now().Add(2 * time.Second)
	for {
		tui.controls.mu.Lock()
		ready := tui.controls.prompt != nil
		tui.controls.mu.Unlock()
		if ready {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("prompt never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := w.Write([]byte("\r")); err != nil {
		t.Fatalf("failed to write enter: %v", err)
	}

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected enter to complete ReadLine")
	}
}

func TestTUIReadLineContextCancel(t *testing.T) {
	in, w := io.Pipe()
	tui := NewHeadless(in, io.Discard)
	defer func() {
		_ = w.Close()
		_ = tui.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := tui.ReadLine(ctx); err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestControlsWatchDropsStalePresses(t *testing.T) {
	c := NewControls()
	c.press()
	c.togglePause()

	release := c.watch()
	defer release()

	select {
	case <-c.keys:
		t.Error("expected press made before watching to be dropped")
	default:
	}
	select {
	case <-c.toggles:
		t.Error("expected toggle made before watching to be dropped")
	default:
	}

	// a second watcher keeps presses meant for the first
	c.press()
	release2 := c.watch()
	release2()
	select {
	case <-c.keys:
	default:
		t.Error("expected press to survive a concurrent watcher")
	}
}

func TestTUIKeyBetweenSessionsIgnored(t *testing.T) {
	in, w := io.Pipe()
	tui := NewHeadless(in, io.Discard)
	defer func() {
		_ = w.Close()
		_ = tui.Close()
	}()

	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(tui.controls.keys) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("key press never reached the controls")
		}
		time.Sleep(5 * time.Millisecond)
	}

	keys, release := tui.WatchKeys()
	defer release()

	select {
	case <-keys:
		t.Fatal("expected press made before the session to be dropped")
	case <-time.After(100 * time.Millisecond):
	}
}
