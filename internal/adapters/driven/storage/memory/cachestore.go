package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
	"github.com/lamdong-labs/kvsync-cli/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// cacheKey identifies one cached record.
type cacheKey struct {
	ownerID    string
	resource   domain.ResourceType
	externalID int64
}

// CacheStore is an in-memory implementation of driven.CacheStore.
type CacheStore struct {
	mu      sync.RWMutex
	records map[cacheKey]domain.Record
}

// NewCacheStore creates a new in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		records: make(map[cacheKey]domain.Record),
	}
}

// Exists reports whether a record is already cached.
func (s *CacheStore) Exists(
	_ context.Context,
	ownerID string,
	resource domain.ResourceType,
	externalID int64,
) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[cacheKey{ownerID, resource, externalID}]
	return ok, nil
}

// Upsert inserts or overwrites a single record.
func (s *CacheStore) Upsert(_ context.Context, ownerID string, record domain.Record) error {
	if record == nil {
		return fmt.Errorf("%w: nil record", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[cacheKey{ownerID, record.Resource(), record.ExternalID()}] = record
	return nil
}

// Count returns the number of cached records for a resource type.
func (s *CacheStore) Count(_ context.Context, ownerID string, resource domain.ResourceType) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for key := range s.records {
		if key.ownerID == ownerID && key.resource == resource {
			count++
		}
	}
	return count, nil
}
