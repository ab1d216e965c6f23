// Package ratelimit provides fixed-window request counters keyed by caller.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result is the state of a counter after an increment.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store counts hits per key within a fixed window.
type Store interface {
	Increment(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// Rule names a limit applied to a key prefix.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Rules used by the HTTP layer.
var (
	AdminLogin = Rule{Name: "admin-login", Limit: 5, Window: 15 * time.Minute}
	EditRead   = Rule{Name: "edit:get", Limit: 30, Window: time.Minute}
	EditWrite  = Rule{Name: "edit:post", Limit: 10, Window: time.Minute}
)

// Key returns the counter key for a client.
func (r Rule) Key(client string) string {
	return r.Name + ":" + client
}

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a process-local Store. Counters are not shared between
// instances.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]*entry
	now       func() time.Time
	lastPrune time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*entry), now: time.Now}
}

// Increment records a hit. Once the limit is reached further hits are
// rejected without being counted until the window resets.
func (s *MemoryStore) Increment(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)

	e, ok := s.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(window)}
		s.entries[key] = e
		return Result{Allowed: true, Remaining: limit - 1, ResetAt: e.resetAt}, nil
	}

	if e.count >= limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: e.resetAt}, nil
	}

	e.count++
	return Result{Allowed: true, Remaining: max(limit-e.count, 0), ResetAt: e.resetAt}, nil
}

// prune drops expired entries at most once a minute.
func (s *MemoryStore) prune(now time.Time) {
	if now.Sub(s.lastPrune) < time.Minute {
		return
	}
	s.lastPrune = now
	for k, e := range s.entries {
		if now.After(e.resetAt) {
			delete(s.entries, k)
		}
	}
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
