package video

import "sync"

// firstFrameSignal is a one-shot completion signal satisfied when the
// platform reports the first rendered frame for a handle. Redundant
// completions are ignored.
type firstFrameSignal struct {
	mu        sync.Mutex
	completed bool
	done      chan struct{}
}

func newFirstFrameSignal() *firstFrameSignal {
	return &firstFrameSignal{done: make(chan struct{})}
}

// Complete marks the signal as done. Safe to call more than once; only the
// first call has an effect.
func (s *firstFrameSignal) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return
	}
	s.completed = true
	close(s.done)
}

// Done returns a channel closed once the signal completes.
func (s *firstFrameSignal) Done() <-chan struct{} {
	return s.done
}

// Completed reports whether the signal has fired.
func (s *firstFrameSignal) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}
