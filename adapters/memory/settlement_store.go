// Package memory provides an in-memory settlement store for tests and
// the CLI. It enforces the same optimistic-concurrency contract as the
// postgres store.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"oiltrading/core/settlement"
	"oiltrading/internal/errors"
)

// SettlementStore is a map-backed settlement.Store.
type SettlementStore struct {
	mu       sync.Mutex
	versions map[uuid.UUID]int
	rows     map[uuid.UUID]*settlement.Settlement
}

// NewSettlementStore creates an empty store.
func NewSettlementStore() *SettlementStore {
	return &SettlementStore{
		versions: make(map[uuid.UUID]int),
		rows:     make(map[uuid.UUID]*settlement.Settlement),
	}
}

// Get implements settlement.Store. The returned settlement is a
// detached copy: mutations on it are invisible to the store until
// Update, and a concurrent writer's success leaves this copy's version
// stale so its own write conflicts.
func (m *SettlementStore) Get(_ context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.rows[id]
	if !ok {
		return nil, errors.NotFound("settlement", id.String())
	}
	return s.Copy(), nil
}

// Create implements settlement.Store.
func (m *SettlementStore) Create(_ context.Context, s *settlement.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rows[s.ID()]; exists {
		return errors.Conflict("settlement", s.ID().String())
	}
	s.MarkPersisted(1)
	m.rows[s.ID()] = s.Copy()
	m.versions[s.ID()] = 1
	return nil
}

// Update implements settlement.Store: the write succeeds only when the
// caller saw the current version.
func (m *SettlementStore) Update(_ context.Context, s *settlement.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.versions[s.ID()]
	if !exists {
		return errors.NotFound("settlement", s.ID().String())
	}
	if current != s.Version() {
		return errors.Conflict("settlement", s.ID().String())
	}
	s.MarkPersisted(current + 1)
	m.rows[s.ID()] = s.Copy()
	m.versions[s.ID()] = current + 1
	return nil
}
