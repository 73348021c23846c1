// Package organizer implements the folder hierarchy and task membership
// operations on top of the entity store.
package organizer

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"go-task-organizer/internal/models"
	"go-task-organizer/internal/store"
)

// Organizer bundles the hierarchy and task managers over one store.
type Organizer struct {
	*Hierarchy
	*Tasks

	store  *store.Store
	logger *log.Logger
}

// New returns an Organizer over s. A nil logger discards output.
func New(s *store.Store, logger *log.Logger) *Organizer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Organizer{
		Hierarchy: NewHierarchy(s, logger),
		Tasks:     NewTasks(s, logger),
		store:     s,
		logger:    logger,
	}
}

// Store returns the underlying entity store.
func (o *Organizer) Store() *store.Store {
	return o.store
}

// Save commits pending changes to the persistence backend.
func (o *Organizer) Save(ctx context.Context) error {
	return o.store.Save(ctx)
}

// Snapshot returns a deep copy of the whole graph.
func (o *Organizer) Snapshot() *models.Snapshot {
	return o.store.Snapshot()
}

// dropMembership removes the edge between a task and a folder and deletes
// the task when it no longer belongs anywhere. It reports whether the task
// was deleted.
func dropMembership(tx *store.Tx, taskID, folderID string) (bool, error) {
	if err := tx.Unlink(taskID, folderID); err != nil {
		return false, err
	}
	t, err := tx.Task(taskID)
	if err != nil {
		return false, err
	}
	if len(t.FolderIDs) > 0 {
		return false, nil
	}
	if err := tx.DeleteTask(taskID); err != nil {
		return false, err
	}
	return true, nil
}
