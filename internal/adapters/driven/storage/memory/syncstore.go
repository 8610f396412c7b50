package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
	"github.com/lamdong-labs/kvsync-cli/internal/core/ports/driven"
)

// Ensure SyncStateStore implements the interface.
var _ driven.SyncStateStore = (*SyncStateStore)(nil)

// stateKey identifies one sync state.
type stateKey struct {
	ownerID  string
	resource domain.ResourceType
}

// SyncStateStore is an in-memory implementation of driven.SyncStateStore.
type SyncStateStore struct {
	mu     sync.Mutex
	states map[stateKey]domain.SyncState

	// now is swappable for stale-flag tests.
	now func() time.Time
}

// NewSyncStateStore creates a new in-memory sync state store.
func NewSyncStateStore() *SyncStateStore {
	return &SyncStateStore{
		states: make(map[stateKey]domain.SyncState),
		now:    time.Now,
	}
}

// Get retrieves sync state for an owner and resource type.
func (s *SyncStateStore) Get(
	_ context.Context,
	ownerID string,
	resource domain.ResourceType,
) (*domain.SyncState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[stateKey{ownerID, resource}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &state, nil
}

// List returns all sync states for an owner, ordered by resource type.
func (s *SyncStateStore) List(_ context.Context, ownerID string) ([]domain.SyncState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var states []domain.SyncState
	for key, state := range s.states {
		if key.ownerID == ownerID {
			states = append(states, state)
		}
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].Resource < states[j].Resource
	})
	return states, nil
}

// Begin atomically marks a sync as in progress.
func (s *SyncStateStore) Begin(_ context.Context, ownerID string, resource domain.ResourceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	key := stateKey{ownerID, resource}
	state, ok := s.states[key]
	if ok && state.InProgress && now.Sub(state.StartedAt) < driven.StaleSyncTimeout {
		return fmt.Errorf("%w: %s/%s", domain.ErrSyncInProgress, ownerID, resource)
	}

	state.OwnerID = ownerID
	state.Resource = resource
	state.InProgress = true
	state.StartedAt = now
	s.states[key] = state
	return nil
}

// Complete records a successful pass.
func (s *SyncStateStore) Complete(
	_ context.Context,
	ownerID string,
	resource domain.ResourceType,
	itemCount int,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stateKey{ownerID, resource}
	state := s.states[key]
	state.OwnerID = ownerID
	state.Resource = resource
	state.InProgress = false
	state.LastSyncAt = s.now().UTC()
	state.ItemsSynced = itemCount
	s.states[key] = state
	return nil
}

// Fail clears the in-progress flag without moving the checkpoint.
func (s *SyncStateStore) Fail(_ context.Context, ownerID string, resource domain.ResourceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stateKey{ownerID, resource}
	state, ok := s.states[key]
	if !ok {
		return nil
	}
	state.InProgress = false
	s.states[key] = state
	return nil
}

// ResetInProgress clears the flag for every resource type of an owner.
func (s *SyncStateStore) ResetInProgress(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, state := range s.states {
		if key.ownerID == ownerID && state.InProgress {
			state.InProgress = false
			s.states[key] = state
		}
	}
	return nil
}

// NeedsInitialSync reports whether any resource type has never completed
// a sync for the owner.
func (s *SyncStateStore) NeedsInitialSync(_ context.Context, ownerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	synced := 0
	for key, state := range s.states {
		if key.ownerID == ownerID && !state.LastSyncAt.IsZero() {
			synced++
		}
	}
	return synced < len(domain.AllResourceTypes()), nil
}

// Ensure SyncLogStore implements the interface.
var _ driven.SyncLogStore = (*SyncLogStore)(nil)

// SyncLogStore is an in-memory implementation of driven.SyncLogStore.
type SyncLogStore struct {
	mu      sync.Mutex
	entries []domain.SyncLogEntry
}

// NewSyncLogStore creates a new in-memory sync log store.
func NewSyncLogStore() *SyncLogStore {
	return &SyncLogStore{}
}

// Append writes one audit entry.
func (s *SyncLogStore) Append(_ context.Context, entry domain.SyncLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// List returns the most recent entries for an owner, newest first.
func (s *SyncLogStore) List(_ context.Context, ownerID string, limit int) ([]domain.SyncLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	var entries []domain.SyncLogEntry
	for i := len(s.entries) - 1; i >= 0 && len(entries) < limit; i-- {
		if s.entries[i].OwnerID == ownerID {
			entries = append(entries, s.entries[i])
		}
	}
	return entries, nil
}
