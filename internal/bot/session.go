package bot

import (
	"sync"
	"time"
)

// session is one user's current numbered list.
type session struct {
	itemIDs   []string
	createdAt time.Time
}

// Sessions resolves the small integers users type after a query ("!done 2")
// back to item ids. It is the only state shared across requests: a Set
// replaces a user's whole list atomically, a Get checks the TTL itself so
// correctness never depends on when Sweep runs.
type Sessions struct {
	mu     sync.RWMutex
	ttl    time.Duration
	now    func() time.Time
	byUser map[string]session
}

// NewSessions creates the store. The clock is injectable so TTL behavior is
// deterministic in tests; pass time.Now in production.
func NewSessions(ttl time.Duration, now func() time.Time) *Sessions {
	if now == nil {
		now = time.Now
	}
	return &Sessions{
		ttl:    ttl,
		now:    now,
		byUser: make(map[string]session),
	}
}

// Set stores/overwrites the session for userID with a fresh createdAt.
func (s *Sessions) Set(userID string, itemIDs []string) {
	ids := make([]string, len(itemIDs))
	copy(ids, itemIDs)

	s.mu.Lock()
	s.byUser[userID] = session{itemIDs: ids, createdAt: s.now()}
	s.mu.Unlock()
}

// Get returns the item id at 1-based index, or false if there is no live
// session for this user or the index is out of range.
func (s *Sessions) Get(userID string, index int) (string, bool) {
	s.mu.RLock()
	sess, ok := s.byUser[userID]
	s.mu.RUnlock()

	if !ok || s.now().Sub(sess.createdAt) > s.ttl {
		return "", false
	}
	if index < 1 || index > len(sess.itemIDs) {
		return "", false
	}
	return sess.itemIDs[index-1], true
}

// Sweep removes every expired session. Safe to call from a timer or
// opportunistically before writes; Get enforces the TTL either way.
func (s *Sessions) Sweep() {
	now := s.now()

	s.mu.Lock()
	for userID, sess := range s.byUser {
		if now.Sub(sess.createdAt) > s.ttl {
			delete(s.byUser, userID)
		}
	}
	s.mu.Unlock()
}

// Len reports the number of live entries (expired ones included until swept).
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser)
}
