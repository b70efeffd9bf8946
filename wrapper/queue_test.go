package wrapper

import (
	"fmt"
	"testing"
	"time"
)

func TestQueueOrderPreserved(t *testing.T) {
	q := newLineQueue()
	for i := 0; i < 100; i++ {
		if !q.push(fmt.Sprintf("line-%d", i)) {
			t.Fatalf("push %d failed", i)
		}
	}
	for i := 0; i < 100; i++ {
		line, ok := q.recv()
		if !ok {
			t.Fatalf("recv %d: queue reported closed", i)
		}
		if want := fmt.Sprintf("line-%d", i); line != want {
			t.Fatalf("recv %d: got %q, want %q", i, line, want)
		}
	}
}

func TestQueueTryRecvEmpty(t *testing.T) {
	q := newLineQueue()
	if line, ok := q.tryRecv(); ok {
		t.Fatalf("tryRecv on empty queue returned %q", line)
	}
}

func TestQueueCloseDeliversQueuedLinesFirst(t *testing.T) {
	q := newLineQueue()
	q.push("a")
	q.push("b")
	q.close()

	if line, ok := q.recv(); !ok || line != "a" {
		t.Fatalf("got (%q, %v), want (a, true)", line, ok)
	}
	if line, ok := q.recv(); !ok || line != "b" {
		t.Fatalf("got (%q, %v), want (b, true)", line, ok)
	}
	if _, ok := q.recv(); ok {
		t.Fatal("recv after drain on closed queue reported ok")
	}
}

func TestQueuePushAfterClose(t *testing.T) {
	q := newLineQueue()
	q.close()
	if q.push("late") {
		t.Fatal("push after close succeeded")
	}
}

func TestQueueCloseWakesBlockedRecv(t *testing.T) {
	q := newLineQueue()

	got := make(chan bool, 1)
	go func() {
		_, ok := q.recv()
		got <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.close()

	select {
	case ok := <-got:
		if ok {
			t.Fatal("blocked recv reported a line after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocked recv was not woken by close")
	}
}
