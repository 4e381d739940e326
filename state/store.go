package state

import (
	"sync"

	"github.com/MrEthical07/goSession/session"
)

// Snapshot is a torn-free read of the store: Verifying is false if and only
// if Outcome holds the final value of the current bootstrap generation.
type Snapshot struct {
	Verifying bool
	Outcome   session.Outcome
}

// Store holds the resolved session outcome and the verifying flag for one
// engine. It lives for the process lifetime and is reset only by an explicit
// re-bootstrap.
type Store struct {
	mu        sync.Mutex
	verifying bool
	outcome   session.Outcome
	resolved  chan struct{}
}

// New returns a store in the verifying state with an unresolved generation.
func New() *Store {
	return &Store{
		verifying: true,
		resolved:  make(chan struct{}),
	}
}

// Resolve publishes the terminal outcome of a run. The outcome write and the
// verifying clear share one critical section, and the generation channel is
// closed last, so a reader woken by Resolved() always sees the final value.
// Resolving an already-resolved generation replaces the outcome (logout path).
func (s *Store) Resolve(outcome session.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcome = outcome
	if s.verifying {
		s.verifying = false
		// The channel can only be open while verifying; close under the lock
		// so concurrent Resolve calls cannot double-close.
		close(s.resolved)
	}
}

// Reset starts a new generation: verifying goes true and Resolved() callers
// block until the next Resolve. The previous outcome stays readable until
// then, marked as in-flight by the verifying flag.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.verifying {
		s.verifying = true
		s.resolved = make(chan struct{})
	}
}

// Snapshot returns the current state under the store lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Verifying: s.verifying, Outcome: s.outcome}
}

// Verifying reports whether a bootstrap run is still in flight.
func (s *Store) Verifying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifying
}

// Outcome returns the last resolved outcome and whether it is final for the
// current generation.
func (s *Store) Outcome() (session.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome, !s.verifying
}

// Resolved returns a channel closed when the current generation resolves.
func (s *Store) Resolved() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}
