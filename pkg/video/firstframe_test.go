package video

import "testing"

func TestFirstFrameSignalCompleteOnce(t *testing.T) {
	s := newFirstFrameSignal()

	select {
	case <-s.Done():
		t.Fatal("signal completed before Complete")
	default:
	}
	if s.Completed() {
		t.Fatal("Completed should be false initially")
	}

	s.Complete()
	select {
	case <-s.Done():
	default:
		t.Fatal("Done channel not closed after Complete")
	}
	if !s.Completed() {
		t.Error("Completed should be true")
	}

	// Redundant completion must not panic.
	s.Complete()
}
