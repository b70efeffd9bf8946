// Package shutdown provides the one-shot handoff used to tell the HTTP
// listener to begin graceful shutdown once the game server has stopped.
package shutdown

import (
	"errors"
	"sync"
)

// ErrAlreadyTriggered means a prior shutdown attempt already consumed
// the handoff. Callers must report it, not treat it as a no-op.
var ErrAlreadyTriggered = errors.New("shutdown has already been signaled")

// Handoff is a single-use notification. Trigger fires it exactly once;
// Done exposes the signal to the listener side.
type Handoff struct {
	mu        sync.Mutex
	triggered bool
	done      chan struct{}
}

// NewHandoff returns an untriggered handoff.
func NewHandoff() *Handoff {
	return &Handoff{done: make(chan struct{})}
}

// Trigger fires the handoff. A second call returns ErrAlreadyTriggered.
func (h *Handoff) Trigger() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.triggered {
		return ErrAlreadyTriggered
	}
	h.triggered = true
	close(h.done)
	return nil
}

// Done returns a channel that is closed once the handoff has fired.
func (h *Handoff) Done() <-chan struct{} {
	return h.done
}
