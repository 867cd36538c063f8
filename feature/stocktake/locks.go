package stocktake

import "sync"

// sessionLocks serializes mutations per inventory id. At most one structural
// change (add/remove/count/transition) is in flight for a given session;
// sessions with different ids proceed in parallel.
//
// Entries are never removed: dropping one while a waiter is blocked on it
// would let a later acquire hand out a second mutex for the same id. The
// table is bounded by the sessions touched over the process lifetime.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for the given id, creating it on first use.
// The returned function releases the lock.
func (s *sessionLocks) acquire(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
