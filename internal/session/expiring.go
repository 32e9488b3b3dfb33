package session

import (
	"sync"
	"time"

	"github.com/hearthlabs/hearth/internal/schema"
)

// ExpiringStore is a Store with a per-session idle TTL. Sessions untouched
// for longer than the TTL are dropped on the next store operation; no
// background goroutine, no Close to forget.
//
// This is the bounded implementation callers should inject in front of a
// public transport, where session ids arrive from untrusted clients and a
// plain MemoryStore would grow without limit.
type ExpiringStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	byID map[string]*expiringEntry
}

type expiringEntry struct {
	filters  schema.FilterSet
	lastSeen time.Time
}

// NewExpiringStore creates a TTL-bounded context store. A non-positive ttl
// behaves like a plain MemoryStore (nothing expires).
func NewExpiringStore(ttl time.Duration) *ExpiringStore {
	return &ExpiringStore{
		ttl:  ttl,
		now:  time.Now,
		byID: map[string]*expiringEntry{},
	}
}

func (s *ExpiringStore) Merge(sessionID string, newFilters schema.FilterSet) schema.FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()

	var existing schema.FilterSet
	if e, ok := s.byID[sessionID]; ok {
		existing = e.filters
	}
	merged := mergeFilters(existing, newFilters)
	s.byID[sessionID] = &expiringEntry{filters: merged, lastSeen: s.now()}
	return merged.Clone()
}

func (s *ExpiringStore) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	delete(s.byID, sessionID)
}

func (s *ExpiringStore) Get(sessionID string) schema.FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()

	e, ok := s.byID[sessionID]
	if !ok {
		return schema.FilterSet{}
	}
	e.lastSeen = s.now()
	return e.filters.Clone()
}

// Len reports the number of live (unexpired) sessions.
func (s *ExpiringStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	return len(s.byID)
}

// sweep drops expired entries. Caller must hold s.mu.
func (s *ExpiringStore) sweep() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, e := range s.byID {
		if e.lastSeen.Before(cutoff) {
			delete(s.byID, id)
		}
	}
}
