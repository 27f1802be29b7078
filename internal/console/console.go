// ABOUTME: Terminal console for status output and keyboard input
// ABOUTME: Routes stdin bytes to key watchers or a pending line read
package console

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/x/term"
	"github.com/muesli/cancelreader"
)

// Console prints status lines and turns stdin into key presses and lines.
// While any key watcher is active a terminal stdin is put in raw mode so a
// single key press is seen without Enter.
type Console struct {
	out    io.Writer
	reader cancelreader.CancelReader
	fd     uintptr
	isTerm bool

	mu       sync.Mutex
	watchers int
	waiters  int
	rawState *term.State
	line     []byte
	lastCR   bool

	keys  chan struct{}
	lines chan string
	done  chan struct{}
	once  sync.Once
}

// New starts reading in. out receives status lines.
func New(in *os.File, out io.Writer) (*Console, error) {
	reader, err := cancelreader.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("failed to create input reader: %w", err)
	}

	c := &Console{
		out:    out,
		reader: reader,
		fd:     in.Fd(),
		isTerm: term.IsTerminal(in.Fd()),
		keys:   make(chan struct{}, 1),
		lines:  make(chan string, 1),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Printf writes a status line
func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	if c.rawState != nil {
		// raw mode disables output post-processing
		s = strings.ReplaceAll(s, "\n", "\r\n")
	}
	_, _ = io.WriteString(c.out, s)
}

// WatchKeys returns a channel of key presses. Call release when done.
// Concurrent watchers share presses: each press wakes exactly one.
func (c *Console) WatchKeys() (<-chan struct{}, func()) {
	c.mu.Lock()
	c.watchers++
	if c.watchers == 1 {
		c.enterRaw()
		// drop presses nobody was listening for
		select {
		case <-c.keys:
		default:
		}
	}
	c.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			c.mu.Lock()
			c.watchers--
			if c.watchers == 0 {
				c.exitRaw()
			}
			c.mu.Unlock()
		})
	}
	return c.keys, release
}

// ReadLine blocks until a full line is entered, ctx ends or input closes
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	c.mu.Lock()
	c.waiters++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.waiters--
		c.mu.Unlock()
	}()

	select {
	case line := <-c.lines:
		return line, nil
	case <-c.done:
		return "", io.EOF
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops reading and restores the terminal
func (c *Console) Close() error {
	c.once.Do(func() {
		c.reader.Cancel()
		<-c.done
		c.mu.Lock()
		c.exitRaw()
		c.mu.Unlock()
	})
	return c.reader.Close()
}

func (c *Console) readLoop() {
	defer close(c.done)

	buf := make([]byte, 64)
	for {
		n, err := c.reader.Read(buf)
		for _, b := range buf[:n] {
			c.route(b)
		}
		if err != nil {
			if err != io.EOF && err != cancelreader.ErrCanceled {
				log.Printf("Console input error: %v", err)
			}
			return
		}
	}
}

// route hands one input byte to a key watcher, else to a pending line read
func (c *Console) route(b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watchers > 0 {
		select {
		case c.keys <- struct{}{}:
		default:
		}
		return
	}

	if b == '\n' && c.lastCR {
		c.lastCR = false
		return
	}
	c.lastCR = b == '\r'

	if b != '\r' && b != '\n' {
		c.line = append(c.line, b)
		return
	}

	line := string(c.line)
	c.line = c.line[:0]
	if c.waiters > 0 {
		select {
		case c.lines <- line:
		default:
		}
	}
}

// enterRaw switches a terminal stdin to raw mode (must hold c.mu)
func (c *Console) enterRaw() {
	if !c.isTerm || c.rawState != nil {
		return
	}
	state, err := term.MakeRaw(c.fd)
	if err != nil {
		log.Printf("Failed to enable raw terminal mode: %v", err)
		return
	}
	c.rawState = state
}

// exitRaw restores the terminal (must hold c.mu)
func (c *Console) exitRaw() {
	if c.rawState == nil {
		return
	}
	if err := term.Restore(c.fd, c.rawState); err != nil {
		log.Printf("Failed to restore terminal: %v", err)
	}
	c.rawState = nil
}
