package memory

import (
	"context"
	"sync"

	id "ppdb/pkg/domain"
	audit "ppdb/pkg/platform/audit"
)

// Store is the in-memory audit sink for unit tests and local runs.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything appended so far, oldest first.
func (s *Store) Events() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}

// ByApplicant filters the captured events to one applicant, oldest first.
func (s *Store) ByApplicant(applicantID id.ApplicantID) []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.ApplicantID == applicantID {
			out = append(out, e)
		}
	}
	return out
}
