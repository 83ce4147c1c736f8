// internal/state/memory.go
package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/user/leasecraft/internal/types"
)

// MemoryStore is an in-memory SessionStore for tests and ephemeral runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[types.SessionID]*types.SessionRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[types.SessionID]*types.SessionRecord)}
}

func (m *MemoryStore) resolve(id types.SessionID) *types.SessionRecord {
	if rec, ok := m.records[id]; ok {
		return rec
	}
	now := time.Now()
	rec := &types.SessionRecord{SessionID: id, CreatedAt: now, UpdatedAt: now}
	m.records[id] = rec
	return rec
}

// copyOf returns a shallow copy so callers cannot mutate stored state.
func copyOf(rec *types.SessionRecord) *types.SessionRecord {
	c := *rec
	return &c
}

func (m *MemoryStore) Resolve(_ context.Context, id types.SessionID) (*types.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyOf(m.resolve(id)), nil
}

func (m *MemoryStore) Get(_ context.Context, id types.SessionID) (*types.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return copyOf(rec), nil
}

func (m *MemoryStore) SetContract(_ context.Context, id types.SessionID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.resolve(id)
	rec.Contract = text
	rec.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) ClearContract(_ context.Context, id types.SessionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.resolve(id)
	rec.Contract = ""
	rec.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) NextTurn(_ context.Context, id types.SessionID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.resolve(id)
	rec.Turns++
	rec.UpdatedAt = time.Now()
	return rec.Turns, nil
}

func (m *MemoryStore) List(_ context.Context) ([]*types.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*types.SessionRecord, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, copyOf(rec))
	}
	return records, nil
}

func (m *MemoryStore) Delete(_ context.Context, id types.SessionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, id)
	return nil
}
