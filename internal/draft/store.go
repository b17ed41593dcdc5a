// Package draft holds composed posts awaiting operator confirmation.
package draft

import (
	"sync"

	"github.com/stridiv/postbot/internal/domain"
)

// Store is the ephemeral, process-local draft map. Ids start at 1,
// increase monotonically, and are never reused, even after deletion.
// Drafts do not survive a restart.
type Store struct {
	mu     sync.Mutex
	seq    int64
	drafts map[int64]*domain.Draft
}

// NewStore creates an empty draft store.
func NewStore() *Store {
	return &Store{drafts: make(map[int64]*domain.Draft)}
}

// Put assigns the next id, stores the draft, and returns the id.
func (s *Store) Put(d *domain.Draft) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	d.ID = s.seq
	s.drafts[d.ID] = d
	return d.ID
}

// Get returns the draft for id, if present.
func (s *Store) Get(id int64) (*domain.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	return d, ok
}

// Take removes and returns the draft in one atomic step. Of two racing
// callers exactly one wins; the loser sees ok == false.
func (s *Store) Take(id int64) (*domain.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if ok {
		delete(s.drafts, id)
	}
	return d, ok
}

// Delete removes the draft for id; no-op when absent.
func (s *Store) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
}

// Len returns the number of drafts currently awaiting a decision.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}
