package services

import (
	"sync"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/models"
)

// StateStream is a state-holding broadcast of AuthState snapshots: a fresh
// subscriber immediately receives the current value, then every subsequent
// change. It is not an ephemeral event stream.
type StateStream struct {
	mu      sync.Mutex
	current models.AuthState
	subs    map[int]func(models.AuthState)
	nextID  int
	closed  bool
}

func NewStateStream(initial models.AuthState) *StateStream {
	return &StateStream{
		current: initial,
		subs:    map[int]func(models.AuthState){},
	}
}

// Current returns a copy of the latest snapshot.
func (s *StateStream) Current() models.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Subscribe registers fn and synchronously delivers the current snapshot.
// The returned handle unsubscribes; calling it more than once is harmless.
func (s *StateStream) Subscribe(fn func(models.AuthState)) (unsubscribe func()) {
	s.mu.Lock()
	if s.closed {
		current := s.current.Clone()
		s.mu.Unlock()
		fn(current)
		return func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	current := s.current.Clone()
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// publish replaces the current snapshot and notifies subscribers. Callbacks
// run outside the stream lock so a subscriber may re-read Current or
// unsubscribe without deadlocking.
func (s *StateStream) publish(state models.AuthState) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.current = state

	fns := make([]func(models.AuthState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(state.Clone())
	}
}

// Close drops all subscribers. Closing twice is a no-op; the stream keeps
// serving Current reads after close.
func (s *StateStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.subs = map[int]func(models.AuthState){}
}
