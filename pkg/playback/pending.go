// ABOUTME: Single-shot future for asynchronous playback
// ABOUTME: Resolved once by the device's stopped event
package playback

import (
	"context"
	"sync"
)

// Pending is the eventual outcome of PlayFileAsync
type Pending struct {
	once   sync.Once
	done   chan struct{}
	result Result
	err    error

	// stop ends the session early; nil once resolved at creation
	stop func()
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// resolve sets the outcome; later calls are ignored
func (p *Pending) resolve(result Result, err error) {
	p.once.Do(func() {
		p.result = result
		p.err = err
		close(p.done)
	})
}

// Done is closed when the outcome is available
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until playback finishes. If ctx ends first the session is
// cancelled and Wait returns ctx.Err() once its device has been released.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
	}

	if p.stop != nil {
		p.stop()
	}
	<-p.done
	return p.result, ctx.Err()
}
