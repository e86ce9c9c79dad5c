// Package stream coordinates one token stream from start to settlement:
// tokens are fanned out as events in arrival order, and every run ends
// in exactly one of completed, failed or aborted.
package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"storynexus/pkg/inference"
)

// State is the lifecycle position of a run.
type State int32

const (
	StateIdle State = iota
	StateStreaming
	StateCompleted
	StateFailed
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run has settled.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateAborted
}

type EventKind int

const (
	// EventToken carries one content fragment.
	EventToken EventKind = iota
	// EventComplete carries the accumulated text of the whole run.
	EventComplete
	// EventError carries the error that terminated the run.
	EventError
)

type Event struct {
	Kind  EventKind
	Token string
	Text  string
	Err   error
}

// Run is one in-flight generation. Events arrive on Events in stream
// order and the channel closes once the run settles. An aborted run
// closes the channel without a terminal event.
type Run struct {
	cancel  context.CancelFunc
	events  chan Event
	state   atomic.Int32
	aborted atomic.Bool

	mu   sync.Mutex
	text strings.Builder
}

// Start opens the source under a run-owned cancellable context, so Abort
// tears down the underlying transport, and begins consuming it. The
// source is closed when the run settles, however it settles.
func Start(ctx context.Context, open func(context.Context) (inference.Stream, error)) (*Run, error) {
	ctx, cancel := context.WithCancel(ctx)
	src, err := open(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	r := &Run{
		cancel: cancel,
		events: make(chan Event, 64),
	}
	r.state.Store(int32(StateStreaming))
	go r.consume(src)
	return r, nil
}

func (r *Run) consume(src inference.Stream) {
	defer close(r.events)
	defer src.Close()

	for {
		token, err := src.Recv()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				r.settle(StateCompleted)
				r.events <- Event{Kind: EventComplete, Text: r.Text()}
			case r.aborted.Load() || errors.Is(err, context.Canceled):
				r.settle(StateAborted)
			default:
				r.settle(StateFailed)
				r.events <- Event{Kind: EventError, Err: err}
			}
			return
		}
		if r.aborted.Load() {
			r.settle(StateAborted)
			return
		}
		r.mu.Lock()
		r.text.WriteString(token)
		r.mu.Unlock()
		r.events <- Event{Kind: EventToken, Token: token}
	}
}

func (r *Run) settle(s State) {
	r.state.CompareAndSwap(int32(StateStreaming), int32(s))
}

// Abort cancels the run. No terminal event is emitted; the event
// channel simply closes. Aborting a settled run is a no-op.
func (r *Run) Abort() {
	if r.State().Terminal() {
		return
	}
	r.aborted.Store(true)
	r.cancel()
}

// Events is the run's event stream. It closes when the run settles.
func (r *Run) Events() <-chan Event {
	return r.events
}

// Text returns the content accumulated so far.
func (r *Run) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text.String()
}

func (r *Run) State() State {
	return State(r.state.Load())
}

// Wait blocks until the run settles and returns the final state and
// accumulated text.
func (r *Run) Wait() (State, string) {
	for range r.events {
	}
	return r.State(), r.Text()
}
