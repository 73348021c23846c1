package store

import (
	"context"
	"sync"

	"go-task-organizer/internal/models"
)

// MemoryPersister keeps the committed snapshot in process memory. It backs
// ephemeral stores and tests.
type MemoryPersister struct {
	mu      sync.Mutex
	snap    *models.Snapshot
	commits int
}

// NewMemoryPersister returns a persister with an empty committed snapshot.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load returns a copy of the last committed snapshot.
func (m *MemoryPersister) Load(ctx context.Context) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return &models.Snapshot{}, nil
	}
	return stateFromSnapshot(m.snap).snapshot(), nil
}

// Commit replaces the committed snapshot.
func (m *MemoryPersister) Commit(ctx context.Context, snap *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = stateFromSnapshot(snap).snapshot()
	m.commits++
	return nil
}

// Commits returns how many snapshots were committed.
func (m *MemoryPersister) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}
