// ABOUTME: Null audio output backend
// ABOUTME: Consumes PCM at real-time pace (or as fast as possible) without a sound card
package output

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
)

// nullPeriod is how much audio the null sink pulls per tick
const nullPeriod = 10 * time.Millisecond

// Null discards audio. With realtime set it consumes one period per tick,
// so playback takes as long as it would on hardware.
type Null struct {
	realtime bool
	format   audio.Format
	fill     FillFunc

	mu       sync.Mutex
	stop     chan struct{}
	done     chan struct{}
	consumed atomic.Int64
	closed   atomic.Bool
}

// NewNull creates a null output
func NewNull(realtime bool) *Null {
	return &Null{realtime: realtime}
}

// Open records the format and fill function
func (n *Null) Open(format audio.Format, fill FillFunc) error {
	n.format = format
	n.fill = fill
	return nil
}

// Start launches the pull loop
func (n *Null) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stop != nil {
		return nil
	}
	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	go n.run(n.stop, n.done)
	return nil
}

func (n *Null) run(stop, done chan struct{}) {
	defer close(done)

	size := n.format.Bytes(nullPeriod)
	if size <= 0 {
		size = n.format.FrameSize()
	}
	buf := make([]byte, size)

	var tick <-chan time.Time
	if n.realtime {
		ticker := time.NewTicker(nullPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-stop:
			return
		default:
		}
		if tick != nil {
			select {
			case <-stop:
				return
			case <-tick:
			}
		}
		n.fill(buf)
		n.consumed.Add(int64(len(buf)))
	}
}

// Pause stops the pull loop and waits for it to exit
func (n *Null) Pause() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stop == nil {
		return nil
	}
	close(n.stop)
	<-n.done
	n.stop = nil
	n.done = nil
	return nil
}

// Close stops the pull loop
func (n *Null) Close() error {
	n.closed.Store(true)
	return n.Pause()
}

// Consumed returns the number of bytes pulled so far, silence included
func (n *Null) Consumed() int64 {
	return n.consumed.Load()
}

// Closed reports whether Close has been called
func (n *Null) Closed() bool {
	return n.closed.Load()
}
