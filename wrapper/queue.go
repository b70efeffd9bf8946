package wrapper

import "sync"

// lineQueue is the delivery channel between the reader goroutine and the
// wrapper's blocking operations: an unbounded FIFO, so the producer never
// blocks and the server's stdout can never stall because nobody is
// reading it. Lines come out in exactly the order they were pushed.
//
// A Go channel is not used here because any channel capacity would let a
// quiet consumer back-pressure the reader, and the reader must stay ahead
// of the child unconditionally.
type lineQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	lines  []string
	closed bool
}

func newLineQueue() *lineQueue {
	q := &lineQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends a line to the queue. Returns false if the queue has been
// closed, which the reader treats as fatal to its loop.
func (q *lineQueue) push(line string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.lines = append(q.lines, line)
	q.cond.Signal()
	return true
}

// recv blocks until a line is available or the queue is closed and fully
// drained. ok == false means the producer is gone: lines pushed before
// close are still delivered first.
func (q *lineQueue) recv() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.lines) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.lines) == 0 {
		return "", false
	}
	return q.pop(), true
}

// tryRecv pops a line without blocking. ok == false means the queue was
// empty at the moment of the call, closed or not.
func (q *lineQueue) tryRecv() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.lines) == 0 {
		return "", false
	}
	return q.pop(), true
}

func (q *lineQueue) pop() string {
	line := q.lines[0]
	q.lines = q.lines[1:]
	return line
}

// close marks the producer side gone and wakes every blocked receiver.
func (q *lineQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
