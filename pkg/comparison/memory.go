package comparison

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps comparisons in memory only. The Comparison struct is
// copied on the way in and out; nested input pointers are shared and must be
// treated as read-only.
type MemoryStore struct {
	items map[string]Comparison
	mu    sync.RWMutex

	// onChange runs with the lock held after every successful mutation.
	onChange func(map[string]Comparison) error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Comparison)}
}

// Save creates or updates a comparison.
func (s *MemoryStore) Save(c *Comparison) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	prev, existed := s.items[c.ID]
	if existed {
		c.CreatedAt = prev.CreatedAt
	} else if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	s.items[c.ID] = *c
	if err := s.changed(); err != nil {
		if existed {
			s.items[c.ID] = prev
		} else {
			delete(s.items, c.ID)
		}
		return err
	}
	return nil
}

// Get retrieves a comparison by ID.
func (s *MemoryStore) Get(id string) (*Comparison, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &c, nil
}

// List returns all comparisons, newest update first.
func (s *MemoryStore) List() ([]*Comparison, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Comparison, 0, len(s.items))
	for _, c := range s.items {
		c := c
		out = append(out, &c)
	}
	sortNewestFirst(out)
	return out, nil
}

// Delete removes a comparison by ID.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.items, id)
	if err := s.changed(); err != nil {
		s.items[id] = prev
		return err
	}
	return nil
}

// Count returns the number of stored comparisons.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore) changed() error {
	if s.onChange == nil {
		return nil
	}
	return s.onChange(s.items)
}
