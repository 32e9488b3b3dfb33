// Package session holds per-conversation filter context and the merge
// semantics that accumulate it turn over turn.
//
// Each session id owns a disjoint entry, so cross-session operations are
// independent; within a session, merge is a read-modify-write executed
// atomically under the store lock.
package session

import (
	"sync"

	"github.com/hearthlabs/hearth/internal/schema"
)

// Store is the context-store contract. Implementations must return copies
// from Get and Merge; callers never see the live entry.
type Store interface {
	// Merge folds newly parsed filters into the session's accumulated
	// context and returns the updated context.
	Merge(sessionID string, newFilters schema.FilterSet) schema.FilterSet
	// Reset clears a single session's context.
	Reset(sessionID string)
	// Get returns a copy of the session's current context; a session that
	// has never merged anything yields the zero FilterSet.
	Get(sessionID string) schema.FilterSet
}

// MemoryStore is the default in-process Store: a flat map, created lazily
// per session, never expired. Unbounded growth is a documented gap; wrap
// with NewExpiringStore when sessions are long-lived or numerous.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]schema.FilterSet
}

// NewMemoryStore creates an empty in-memory context store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]schema.FilterSet{}}
}

func (s *MemoryStore) Merge(sessionID string, newFilters schema.FilterSet) schema.FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := mergeFilters(s.sessions[sessionID], newFilters)
	s.sessions[sessionID] = merged
	return merged.Clone()
}

func (s *MemoryStore) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *MemoryStore) Get(sessionID string) schema.FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[sessionID].Clone()
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// mergeFilters implements the accumulation rules:
//
//  1. An empty update leaves the context untouched: an extractor that
//     found nothing must not erase prior state.
//  2. Location is sticky: once established it carries forward until a
//     turn explicitly changes it.
//  3. Ranges merge bound by bound: a new max overrides only the max, an
//     existing min survives.
//  4. Scalars and slices replace wholesale when the update sets them.
//
// The result is idempotent for repeated application of the same update,
// and never removes a previously set field.
func mergeFilters(existing, update schema.FilterSet) schema.FilterSet {
	if update.Empty() {
		return existing
	}

	out := existing.Clone()

	if update.Location != "" {
		out.Location = update.Location
	}
	out.Price = mergeRange(out.Price, update.Price)
	out.Beds = mergeRange(out.Beds, update.Beds)
	out.Baths = mergeRange(out.Baths, update.Baths)

	if pts := update.PropertyTypes; len(pts) > 0 {
		// Parsers disagree about shape and may hand back duplicates
		// or junk values, so normalize again here.
		cleaned := make([]schema.PropertyType, 0, len(pts))
		seen := map[schema.PropertyType]bool{}
		for _, pt := range pts {
			if seen[pt] {
				continue
			}
			seen[pt] = true
			cleaned = append(cleaned, pt)
		}
		out.PropertyTypes = cleaned
	}
	if update.DaysOnMarket > 0 {
		out.DaysOnMarket = update.DaysOnMarket
	}
	if len(update.Keywords) > 0 {
		out.Keywords = append([]string(nil), update.Keywords...)
	}
	if update.SortBy != "" {
		out.SortBy = update.SortBy
	}
	if update.Page > 0 {
		out.Page = update.Page
	}

	return out
}

// mergeRange folds update bounds into an existing range. New bounds
// override only the bounds they specify.
func mergeRange(existing, update *schema.Range) *schema.Range {
	if update.Empty() {
		return existing
	}
	if existing.Empty() {
		return update.Clone()
	}
	out := existing.Clone()
	if update.Min != nil {
		v := *update.Min
		out.Min = &v
	}
	if update.Max != nil {
		v := *update.Max
		out.Max = &v
	}
	return out
}
