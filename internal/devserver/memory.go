package devserver

import (
	"context"
	"sync"
)

// MemoryStore keeps receipts in a map. The default when no database is
// configured; everything is lost on restart, which is fine for a dev
// stand-in.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ReceiptID]; exists {
		return ErrDuplicate
	}

	s.records[rec.ReceiptID] = rec

	return nil
}

func (s *MemoryStore) Get(_ context.Context, receiptID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[receiptID]
	if !ok {
		return nil, ErrNotFound
	}

	return &rec, nil
}

// Tamper overwrites a stored record in place, bypassing the duplicate
// check. Test hook for exercising failed verification.
func (s *MemoryStore) Tamper(receiptID string, mutate func(*Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[receiptID]
	if !ok {
		return
	}

	mutate(&rec)
	s.records[receiptID] = rec
}
