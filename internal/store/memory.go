package store

import (
	"context"
	"sync"
)

// MemoryStore keeps collections in process memory. It backs tests and is
// the simplest injectable backend; the contract matches the durable ones
// minus durability.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string][]Record
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Record)}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) List(ctx context.Context, col Collection) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.collections[col.Name]
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out, nil
}

func (s *MemoryStore) Append(ctx context.Context, col Collection, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[col.Name] = append(s.collections[col.Name], rec.Clone())
	return nil
}

func (s *MemoryStore) UpdateWhere(ctx context.Context, col Collection, pred Predicate, mut Mutator) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for _, rec := range s.collections[col.Name] {
		if pred(rec) {
			mut(rec)
			updated++
		}
	}
	return updated, nil
}

func (s *MemoryStore) DeleteWhere(ctx context.Context, col Collection, pred Predicate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.collections[col.Name]
	kept := records[:0]
	removed := 0
	for _, rec := range records {
		if pred(rec) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	s.collections[col.Name] = kept
	return removed, nil
}
