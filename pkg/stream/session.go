package stream

import (
	"context"
	"sync"

	"storynexus/pkg/inference"
)

// Session serializes generation runs: starting a new run aborts the
// previous one if it is still streaming, so at most one run is active
// at a time.
type Session struct {
	mu      sync.Mutex
	current *Run
}

func NewSession() *Session {
	return &Session{}
}

// Start aborts any active run and begins a new one over the stream the
// opener produces.
func (s *Session) Start(ctx context.Context, open func(context.Context) (inference.Stream, error)) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Abort()
	}
	run, err := Start(ctx, open)
	if err != nil {
		return nil, err
	}
	s.current = run
	return run, nil
}

// Abort cancels the active run. It reports whether a streaming run was
// actually aborted.
func (s *Session) Abort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.State().Terminal() {
		return false
	}
	s.current.Abort()
	return true
}

// Current returns the most recent run, settled or not.
func (s *Session) Current() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
