package session

import (
	"container/list"
	"context"
	"time"

	"github.com/bowerhall/rene/internal/logger"
)

func NewStore(cfg Config) *Store {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}

	return &Store{
		sessions: make(map[string]*Session),
		order:    list.New(),
		maxSize:  cfg.MaxSize,
		ttl:      cfg.TTL,
		now:      time.Now,
	}
}

// Factory creates a remote conversation thread and returns its id.
type Factory func(ctx context.Context) (string, error)

// GetOrCreate returns the thread id bound to userID, creating one via
// factory if needed. Expired entries are swept first, then the LRU
// entry is evicted if the store is full. The lock is held across the
// factory call so two concurrent requests for the same user cannot
// both create a thread.
func (s *Store) GetOrCreate(ctx context.Context, userID string, factory Factory) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	if sess, ok := s.sessions[userID]; ok {
		s.order.MoveToBack(sess.elem)
		return sess.ThreadID, nil
	}

	if len(s.sessions) >= s.maxSize {
		s.evictOldestLocked()
	}

	threadID, err := factory(ctx)
	if err != nil {
		return "", err
	}

	sess := &Session{
		UserID:    userID,
		ThreadID:  threadID,
		CreatedAt: s.now(),
	}
	sess.elem = s.order.PushBack(sess)
	s.sessions[userID] = sess

	logger.Debug("session created", "user", userID, "thread", threadID)

	return threadID, nil
}

// Len reports the current number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops all expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *Store) sweepLocked() int {
	now := s.now()
	removed := 0

	for e := s.order.Front(); e != nil; {
		next := e.Next()
		sess := e.Value.(*Session)
		if now.Sub(sess.CreatedAt) > s.ttl {
			s.order.Remove(e)
			delete(s.sessions, sess.UserID)
			removed++
			logger.Debug("session expired", "user", sess.UserID)
		}
		e = next
	}

	return removed
}

func (s *Store) evictOldestLocked() {
	front := s.order.Front()
	if front == nil {
		return
	}

	sess := front.Value.(*Session)
	s.order.Remove(front)
	delete(s.sessions, sess.UserID)
	logger.Debug("session evicted", "user", sess.UserID)
}
