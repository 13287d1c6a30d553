package persistence

import (
	"context"
	"sync"

	"github.com/britrip/hotelier/internal/domain/property"
)

// MemoryPortfolioStore implements property.PortfolioStore in process memory.
// Snapshots are deep copies in both directions.
type MemoryPortfolioStore struct {
	mu        sync.RWMutex
	snapshots map[string][]*property.Record
}

// NewMemoryPortfolioStore creates an empty store
func NewMemoryPortfolioStore() *MemoryPortfolioStore {
	return &MemoryPortfolioStore{snapshots: make(map[string][]*property.Record)}
}

// Save replaces the snapshot of sessionID
func (s *MemoryPortfolioStore) Save(ctx context.Context, sessionID string, records []*property.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[sessionID] = cloneAll(records)
	return nil
}

// Load returns a copy of the snapshot of sessionID
func (s *MemoryPortfolioStore) Load(ctx context.Context, sessionID string) ([]*property.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.snapshots[sessionID]), nil
}

// Delete drops the snapshot of sessionID
func (s *MemoryPortfolioStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, sessionID)
	return nil
}

// Len returns the number of stored snapshots
func (s *MemoryPortfolioStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

func cloneAll(records []*property.Record) []*property.Record {
	out := make([]*property.Record, 0, len(records))
	for _, r := range records {
		out = append(out, r.Clone())
	}
	return out
}

var _ property.PortfolioStore = (*MemoryPortfolioStore)(nil)
