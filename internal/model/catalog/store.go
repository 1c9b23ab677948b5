package catalog

import (
	"context"
	"fmt"
	"sync"
)

// Branch groups the catalog and free-text menu of a business location.
type Branch struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	BusinessID   string  `json:"businessId" yaml:"businessId"`
	BusinessType string  `json:"businessType" yaml:"businessType"`
	MenuText     string  `json:"menuText,omitempty" yaml:"menuText,omitempty"`
	Entries      []Entry `json:"entries" yaml:"entries"`
}

// MemoryStore implements Accessor over an in-memory branch list.
type MemoryStore struct {
	mu       sync.RWMutex
	branches map[string]Branch
	order    []string
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied branches.
func NewMemoryStore(branches []Branch) *MemoryStore {
	s := &MemoryStore{branches: make(map[string]Branch, len(branches))}
	for _, b := range branches {
		s.Put(b)
	}
	return s
}

// Put adds or replaces a branch snapshot.
func (s *MemoryStore) Put(b Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.branches[b.ID]; !exists {
		s.order = append(s.order, b.ID)
	}
	b.Entries = append([]Entry(nil), b.Entries...)
	s.branches[b.ID] = b
}

// List returns every branch in insertion order.
func (s *MemoryStore) List() []Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Branch, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.branches[id])
	}
	return out
}

// FindByID looks up a branch by identifier.
func (s *MemoryStore) FindByID(id string) (Branch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.branches[id]
	return b, ok
}

// GetCatalog returns a copy of the branch entries in declaration order.
func (s *MemoryStore) GetCatalog(_ context.Context, branchID string) ([]Entry, error) {
	b, ok := s.FindByID(branchID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown branch %q", ErrCatalogUnavailable, branchID)
	}
	return append([]Entry(nil), b.Entries...), nil
}

// GetMenuText returns the branch free-text menu, or a rendering of the
// catalog when the branch has none.
func (s *MemoryStore) GetMenuText(_ context.Context, branchID string) (string, error) {
	b, ok := s.FindByID(branchID)
	if !ok {
		return "", fmt.Errorf("%w: unknown branch %q", ErrCatalogUnavailable, branchID)
	}
	if b.MenuText != "" {
		return b.MenuText, nil
	}
	return RenderMenu(b.Entries), nil
}
