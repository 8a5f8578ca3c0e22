package lockout

import (
	"context"
	"sync"
	"time"
)

// InMemory is the lockout store for unit tests and single-instance runs.
type InMemory struct {
	mu       sync.Mutex
	failures map[string]*failureWindow
	locks    map[string]time.Time
	clock    func() time.Time
}

type failureWindow struct {
	count     int
	expiresAt time.Time
}

// InMemoryOption configures an InMemory store.
type InMemoryOption func(*InMemory)

// WithClock swaps the time source so tests can step through expiry.
func WithClock(clock func() time.Time) InMemoryOption {
	return func(s *InMemory) { s.clock = clock }
}

func NewInMemory(opts ...InMemoryOption) *InMemory {
	s := &InMemory{
		failures: make(map[string]*failureWindow),
		locks:    make(map[string]time.Time),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemory) RecordFailure(_ context.Context, username string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	w, ok := s.failures[username]
	if !ok || now.After(w.expiresAt) {
		w = &failureWindow{expiresAt: now.Add(window)}
		s.failures[username] = w
	}
	w.count++
	return w.count, nil
}

func (s *InMemory) Lock(_ context.Context, username string, duration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks[username] = s.clock().Add(duration)
	return nil
}

func (s *InMemory) IsLocked(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.locks[username]
	if !ok {
		return false, nil
	}
	if s.clock().After(until) {
		delete(s.locks, username)
		return false, nil
	}
	return true, nil
}

func (s *InMemory) Clear(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, username)
	delete(s.locks, username)
	return nil
}
