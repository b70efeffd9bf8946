// Package console fans the server's console lines out to live
// subscribers, such as WebSocket clients watching the console.
package console

import "sync"

// subscriberBuffer is how many lines a subscriber may fall behind before
// it starts losing them.
const subscriberBuffer = 64

// Hub broadcasts console lines. Publish runs on the wrapper's reader
// goroutine and never blocks: a slow subscriber misses lines rather than
// stalling the reader.
type Hub struct {
	mu       sync.RWMutex
	subs     map[chan string]struct{}
	shutdown bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan string]struct{})}
}

// Subscribe registers a new subscriber. The returned function removes
// the subscription and closes its channel; it is safe to call more than
// once.
func (h *Hub) Subscribe() (<-chan string, func()) {
	ch := make(chan string, subscriberBuffer)

	h.mu.Lock()
	if h.shutdown {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
	return ch, unsubscribe
}

// Publish delivers a line to every subscriber that has room for it.
func (h *Hub) Publish(line string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- line:
		default:
		}
	}
}

// Shutdown closes every subscriber channel and rejects new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdown = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
