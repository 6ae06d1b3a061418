package session

import (
	"context"
	"sync"
	"time"
)

const (
	// Sessions idle for longer than this are evicted by the sweep.
	IdleTimeout = time.Hour

	sweepInterval = 10 * time.Minute
)

// Store holds one Session per chat. Distinct chats may be served by parallel
// goroutines, so the map is mutex-guarded; within one chat the dispatcher
// serializes updates, so per-session access needs no further locking.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// NewStoreWithClock is used by tests to drive expiry deterministically.
func NewStoreWithClock(now func() time.Time) *Store {
	s := NewStore()
	s.now = now
	return s
}

// Get returns the chat's session, creating one with defaults if absent, and
// stamps last activity either way.
func (s *Store) Get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &Session{
			ChatID: chatID,
			Verified: map[string]bool{
				"channel_1": false,
				"channel_2": false,
				"group":     false,
			},
		}
		s.sessions[chatID] = sess
	}
	sess.LastActivity = s.now()

	return sess
}

func (s *Store) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle past the timeout and reports how many went.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for chatID, sess := range s.sessions {
		if now.Sub(sess.LastActivity) > IdleTimeout {
			delete(s.sessions, chatID)
			evicted++
		}
	}

	return evicted
}

// Run sweeps periodically until the context is cancelled.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
