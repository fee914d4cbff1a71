package session

import (
	"container/list"
	"sync"
	"time"
)

// Session binds a user to a remote conversation thread.
type Session struct {
	UserID    string
	ThreadID  string
	CreatedAt time.Time

	elem *list.Element
}

// Store is a bounded, TTL-expiring map from user id to session.
// Capacity overflow evicts in strict least-recently-used order; TTL
// expiry is age-based regardless of recency.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	order    *list.List // front = least recently used
	maxSize  int
	ttl      time.Duration
	now      func() time.Time
}

type Config struct {
	MaxSize int
	TTL     time.Duration
}
