// ABOUTME: Test doubles for the playback driver
// ABOUTME: Recording console and a null backend that captures what it pulls
package playback

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"github.com/Resonate-Protocol/pcmplay/pkg/audio/output"
)

// recordingConsole captures status lines and hands out a test-owned key channel
type recordingConsole struct {
	mu    sync.Mutex
	lines []string
	keys  chan struct{}
}

func newRecordingConsole() *recordingConsole {
	return &recordingConsole{keys: make(chan struct{}, 1)}
}

func (c *recordingConsole) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func (c *recordingConsole) WatchKeys() (<-chan struct{}, func()) {
	return c.keys, func() {}
}

func (c *recordingConsole) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func (c *recordingConsole) Contains(line string) bool {
	for _, l := range c.Lines() {
		if l == line {
			return true
		}
	}
	return false
}

// testBackend is a null backend that records its format, what it pulled
// and how often it was closed. A non-nil gate holds every pull until closed.
type testBackend struct {
	*output.Null
	gate chan struct{}

	mu       sync.Mutex
	format   audio.Format
	captured []byte
	closes   int
}

func (b *testBackend) Open(format audio.Format, fill output.FillFunc) error {
	b.mu.Lock()
	b.format = format
	b.mu.Unlock()

	return b.Null.Open(format, func(p []byte) {
		if b.gate != nil {
			<-b.gate
		}
		fill(p)
		b.mu.Lock()
		b.captured = append(b.captured, p...)
		b.mu.Unlock()
	})
}

func (b *testBackend) Close() error {
	b.mu.Lock()
	b.closes++
	b.mu.Unlock()
	return b.Null.Close()
}

func (b *testBackend) Format() audio.Format {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.format
}

func (b *testBackend) Closes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}

func (b *testBackend) Captured() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.captured...)
}

// backendFactory hands out testBackends and remembers them
type backendFactory struct {
	realtime bool
	gate     chan struct{}

	mu       sync.Mutex
	backends []*testBackend
}

func (f *backendFactory) New() (output.Backend, error) {
	b := &testBackend{Null: output.NewNull(f.realtime), gate: f.gate}
	f.mu.Lock()
	f.backends = append(f.backends, b)
	f.mu.Unlock()
	return b, nil
}

func (f *backendFactory) Created() []*testBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*testBackend(nil), f.backends...)
}

func (f *backendFactory) Only(t testing.TB) *testBackend {
	t.Helper()
	created := f.Created()
	if len(created) != 1 {
		t.Fatalf("expected 1 backend, got %d", len(created))
	}
	return created[0]
}

func newTestDriver(realtime bool) (*Driver, *recordingConsole, *backendFactory) {
	console := newRecordingConsole()
	factory := &backendFactory{realtime: realtime}
	driver := New(Config{
		NewBackend: factory.New,
		Console:    console,
	})
	return driver, console, factory
}

var mono48k16 = audio.Format{SampleRate: 48000, Channels: 1, BitDepth: 16}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
