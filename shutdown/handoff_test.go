package shutdown

import (
	"errors"
	"testing"
)

func TestTriggerFiresOnce(t *testing.T) {
	h := NewHandoff()

	select {
	case <-h.Done():
		t.Fatal("handoff fired before Trigger")
	default:
	}

	if err := h.Trigger(); err != nil {
		t.Fatalf("first Trigger: %v", err)
	}

	select {
	case <-h.Done():
	default:
		t.Fatal("Done not observable after Trigger")
	}
}

func TestSecondTriggerIsReported(t *testing.T) {
	h := NewHandoff()
	if err := h.Trigger(); err != nil {
		t.Fatalf("first Trigger: %v", err)
	}
	if err := h.Trigger(); !errors.Is(err, ErrAlreadyTriggered) {
		t.Fatalf("second Trigger = %v, want ErrAlreadyTriggered", err)
	}
}
