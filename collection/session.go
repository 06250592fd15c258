package collection

import (
	"sort"
	"sync"
	"time"
)

// Session is the editing session shared by the collections of one workspace. It
// owns the unsaved-changes state, tracked per collection so that cleaning one
// collection never hides the pending edits of another.
type Session struct {
	mu        sync.RWMutex
	dirty     map[string]struct{}
	lastSaved time.Time
}

// NewSession creates a clean session.
func NewSession() *Session {
	return &Session{dirty: make(map[string]struct{})}
}

// MarkDirty records an edit of owner that has not been persisted.
func (s *Session) MarkDirty(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty[owner] = struct{}{}
}

// MarkClean records that the pending edits of owner were persisted or discarded.
func (s *Session) MarkClean(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dirty[owner]; !ok {
		return
	}
	delete(s.dirty, owner)
	if len(s.dirty) == 0 {
		s.lastSaved = time.Now()
	}
}

// HasUnsavedChanges reports whether any owner has pending edits.
func (s *Session) HasUnsavedChanges() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dirty) > 0
}

// DirtyOwners returns the owners with pending edits, sorted.
func (s *Session) DirtyOwners() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owners := make([]string, 0, len(s.dirty))
	for owner := range s.dirty {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

// LastSaved returns when the session last became clean.
func (s *Session) LastSaved() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSaved
}
