package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// QuotaStore is an in-memory QuotaRepository.
type QuotaStore struct {
	mu     sync.RWMutex
	quotas map[uuid.UUID]uint32
}

func NewQuotaStore() *QuotaStore {
	return &QuotaStore{quotas: make(map[uuid.UUID]uint32)}
}

func (s *QuotaStore) GetBatch(ctx context.Context, memberIDs []uuid.UUID) (map[uuid.UUID]uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID]uint32, len(memberIDs))
	for _, id := range memberIDs {
		if gb, ok := s.quotas[id]; ok {
			out[id] = gb
		}
	}
	return out, nil
}

func (s *QuotaStore) Upsert(ctx context.Context, memberID uuid.UUID, quotaGB uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotas[memberID] = quotaGB
	return nil
}

func (s *QuotaStore) Remove(ctx context.Context, memberID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quotas, memberID)
	return nil
}
