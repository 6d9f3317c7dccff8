// ABOUTME: Owned, mutex-guarded holder for the entity and filter state.
// ABOUTME: The orchestration layer is its single writer; views read copies.
package store

import "sync"

// Store owns the post state and the filter state.
type Store struct {
	mu     sync.Mutex
	state  State
	filter FilterState
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Dispatch applies an action to the post state.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, action)
}

// DispatchFilter applies an action to the filter state.
func (s *Store) DispatchFilter(action FilterAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = ReduceFilter(s.filter, action)
}

// State returns a copy of the current post state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Filter returns the current filter state.
func (s *Store) Filter() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// ConsumeNotice returns the pending notice and clears it, so each notice is
// delivered at most once.
func (s *Store) ConsumeNotice() (Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.state.Notice
	if n.IsZero() {
		return Notice{}, false
	}
	s.state = Reduce(s.state, ClearNotice{})
	return n, true
}

// NextProvisionalID returns the id a client-side draft should use. It only
// grows, so ids freed by deletes are never handed out again.
func (s *Store) NextProvisionalID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.HighestID + 1
}
