package testutil

import (
	"context"
	"sync"
	"time"
)

// StubTransport is an instrumented in-memory transport. It tracks the peak
// number of concurrently in-flight dispatches, which is how tests verify the
// exploration engine's parallelism bound.
type StubTransport struct {
	// Respond produces the reply for one dispatch. Nil means empty reply.
	Respond func(payload []byte, targetURL string) ([]byte, error)
	// Delay holds each dispatch in flight, making concurrency observable.
	Delay time.Duration

	mu       sync.Mutex
	inflight int
	peak     int
	calls    int
}

// Dispatch implements transport.Transport.
func (s *StubTransport) Dispatch(ctx context.Context, payload []byte, targetURL string) ([]byte, error) {
	s.mu.Lock()
	s.inflight++
	s.calls++
	if s.inflight > s.peak {
		s.peak = s.inflight
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	if s.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.Delay):
		}
	}
	if s.Respond == nil {
		return nil, nil
	}
	return s.Respond(payload, targetURL)
}

// Peak returns the highest number of simultaneous in-flight dispatches seen.
func (s *StubTransport) Peak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

// Calls returns the total number of dispatches.
func (s *StubTransport) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
