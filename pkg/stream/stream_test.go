package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"storynexus/pkg/inference"
)

// scriptedStream plays back a fixed chunk sequence and then a final
// error. A nil final error means natural end of stream. With block set,
// Recv waits on the context after the chunks run out, the way a real
// transport read does.
type scriptedStream struct {
	ctx    context.Context
	mu     sync.Mutex
	chunks []string
	final  error
	block  bool
	closed bool
}

func (s *scriptedStream) Recv() (string, error) {
	s.mu.Lock()
	if len(s.chunks) > 0 {
		chunk := s.chunks[0]
		s.chunks = s.chunks[1:]
		s.mu.Unlock()
		return chunk, nil
	}
	s.mu.Unlock()

	if s.block {
		<-s.ctx.Done()
		return "", s.ctx.Err()
	}
	if s.final != nil {
		return "", s.final
	}
	return "", io.EOF
}

func (s *scriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func opener(s *scriptedStream) func(context.Context) (inference.Stream, error) {
	return func(ctx context.Context) (inference.Stream, error) {
		s.ctx = ctx
		return s, nil
	}
}

func TestRunEmitsTokensThenComplete(t *testing.T) {
	src := &scriptedStream{chunks: []string{"Hello", " ", "world"}}
	run, err := Start(context.Background(), opener(src))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var tokens []string
	completes, errs := 0, 0
	var final string
	for ev := range run.Events() {
		switch ev.Kind {
		case EventToken:
			tokens = append(tokens, ev.Token)
		case EventComplete:
			completes++
			final = ev.Text
		case EventError:
			errs++
		}
	}

	if len(tokens) != 3 || tokens[0] != "Hello" || tokens[1] != " " || tokens[2] != "world" {
		t.Fatalf("unexpected token sequence: %q", tokens)
	}
	if completes != 1 || errs != 0 {
		t.Fatalf("expected exactly one complete and no errors, got %d/%d", completes, errs)
	}
	if final != "Hello world" {
		t.Fatalf("unexpected accumulated text: %q", final)
	}
	if run.State() != StateCompleted {
		t.Fatalf("expected completed state, got %v", run.State())
	}
	if !src.closed {
		t.Fatal("source not closed after settlement")
	}
}

func TestRunEmitsErrorOnFailure(t *testing.T) {
	src := &scriptedStream{chunks: []string{"partial"}, final: errors.New("connection reset")}
	run, err := Start(context.Background(), opener(src))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	completes, errs := 0, 0
	for ev := range run.Events() {
		switch ev.Kind {
		case EventComplete:
			completes++
		case EventError:
			errs++
		}
	}

	if completes != 0 || errs != 1 {
		t.Fatalf("expected exactly one error and no complete, got %d/%d", errs, completes)
	}
	if run.State() != StateFailed {
		t.Fatalf("expected failed state, got %v", run.State())
	}
}

func TestStartPropagatesOpenFailure(t *testing.T) {
	_, err := Start(context.Background(), func(ctx context.Context) (inference.Stream, error) {
		return nil, errors.New("bad api key")
	})
	if err == nil {
		t.Fatal("expected the open failure to propagate")
	}
}

func TestAbortIsSilent(t *testing.T) {
	src := &scriptedStream{chunks: []string{"a", "b"}, block: true}
	run, err := Start(context.Background(), opener(src))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Drain the scripted tokens, then abort while Recv blocks.
	var tokens int
	for ev := range run.Events() {
		if ev.Kind != EventToken {
			t.Fatalf("expected only token events before abort, got %+v", ev)
		}
		tokens++
		if tokens == 2 {
			run.Abort()
		}
	}

	if run.State() != StateAborted {
		t.Fatalf("expected aborted state, got %v", run.State())
	}
	if !src.closed {
		t.Fatal("source not released on abort")
	}

	// Redundant abort after settlement is a no-op.
	run.Abort()
	if run.State() != StateAborted {
		t.Fatalf("state changed by redundant abort: %v", run.State())
	}
}

func TestSessionAbortsPreviousRun(t *testing.T) {
	first := &scriptedStream{block: true}
	second := &scriptedStream{chunks: []string{"x"}}
	session := NewSession()

	run1, err := session.Start(context.Background(), opener(first))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	run2, err := session.Start(context.Background(), opener(second))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	state, _ := run1.Wait()
	if state != StateAborted {
		t.Fatalf("expected the first run to be aborted, got %v", state)
	}

	state, text := run2.Wait()
	if state != StateCompleted || text != "x" {
		t.Fatalf("expected the second run to complete, got %v %q", state, text)
	}
}

func TestSessionAbortReportsActivity(t *testing.T) {
	session := NewSession()
	if session.Abort() {
		t.Fatal("abort with no run should report false")
	}

	src := &scriptedStream{block: true}
	run, err := session.Start(context.Background(), opener(src))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !session.Abort() {
		t.Fatal("abort of a streaming run should report true")
	}

	if state, _ := run.Wait(); state != StateAborted {
		t.Fatalf("expected aborted state, got %v", state)
	}
	if session.Abort() {
		t.Fatal("abort of a settled run should report false")
	}
}

func TestParentContextCancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &scriptedStream{block: true}
	run, err := Start(ctx, opener(src))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cancel()
	if state, _ := run.Wait(); state != StateAborted {
		t.Fatalf("expected aborted state on client disconnect, got %v", state)
	}
}
