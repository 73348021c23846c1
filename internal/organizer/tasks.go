package organizer

import (
	"fmt"

	"github.com/charmbracelet/log"

	"go-task-organizer/internal/models"
	"go-task-organizer/internal/store"
)

// Tasks maintains task records and their membership in folders.
type Tasks struct {
	store  *store.Store
	logger *log.Logger
}

// NewTasks returns a task manager over s.
func NewTasks(s *store.Store, logger *log.Logger) *Tasks {
	return &Tasks{store: s, logger: logger}
}

// Task returns one task by id.
func (m *Tasks) Task(id string) (*models.Task, error) {
	var out *models.Task
	err := m.store.View(func(r *store.Reader) error {
		t, err := r.Task(id)
		if err != nil {
			return err
		}
		out = t.Clone()
		return nil
	})
	return out, err
}

// CreateTaskIn creates a task as a member of folderID.
func (m *Tasks) CreateTaskIn(folderID string, draft models.TaskDraft) (*models.Task, error) {
	var out *models.Task
	err := m.store.Update("create_task", func(tx *store.Tx) error {
		if _, err := tx.Folder(folderID); err != nil {
			return err
		}
		t, err := tx.InsertTask(draft.Name, draft.Details, draft.DueDate, draft.Priority)
		if err != nil {
			return err
		}
		if err := tx.Link(t.ID, folderID); err != nil {
			return err
		}
		out = t.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("task created", "id", out.ID, "folder", folderID)
	return out, nil
}

// SetDone sets the completion flag.
func (m *Tasks) SetDone(id string, done bool) (*models.Task, error) {
	var out *models.Task
	err := m.store.Update("set_done", func(tx *store.Tx) error {
		t, err := tx.Task(id)
		if err != nil {
			return err
		}
		t.IsDone = done
		t.UpdatedAt = tx.Now()
		out = t.Clone()
		return nil
	})
	return out, err
}

// EditFields updates only the supplied task fields.
func (m *Tasks) EditFields(id string, fields models.TaskFields) (*models.Task, error) {
	var out *models.Task
	err := m.store.Update("edit_task", func(tx *store.Tx) error {
		if err := fields.Validate(); err != nil {
			return err
		}
		t, err := tx.Task(id)
		if err != nil {
			return err
		}
		if fields.Name != nil {
			t.Name = *fields.Name
		}
		if fields.ClearDetails {
			t.Details = nil
		} else if fields.Details != nil {
			t.Details = store.NormalizeDetails(fields.Details)
		}
		if fields.ClearDueDate {
			t.DueDate = nil
		} else if fields.DueDate != nil {
			d := *fields.DueDate
			t.DueDate = &d
		}
		if fields.Priority != nil {
			t.Priority = *fields.Priority
		}
		t.UpdatedAt = tx.Now()
		out = t.Clone()
		return nil
	})
	return out, err
}

// AddMembership links a task into another folder.
func (m *Tasks) AddMembership(taskID, folderID string) (*models.Task, error) {
	var out *models.Task
	err := m.store.Update("add_membership", func(tx *store.Tx) error {
		if err := tx.Link(taskID, folderID); err != nil {
			return err
		}
		t, err := tx.Task(taskID)
		if err != nil {
			return err
		}
		out = t.Clone()
		return nil
	})
	return out, err
}

// RemoveMembership unlinks a task from a folder. A task removed from its
// last folder is deleted; the returned bool reports that.
func (m *Tasks) RemoveMembership(taskID, folderID string) (bool, error) {
	var deleted bool
	err := m.store.Update("remove_membership", func(tx *store.Tx) error {
		var err error
		deleted, err = dropMembership(tx, taskID, folderID)
		return err
	})
	if err != nil {
		return false, err
	}
	if deleted {
		m.logger.Info("task deleted with its last membership", "id", taskID, "folder", folderID)
	}
	return deleted, nil
}

// DeleteTask removes a task from every folder and deletes it.
func (m *Tasks) DeleteTask(id string) error {
	err := m.store.Update("delete_task", func(tx *store.Tx) error {
		t, err := tx.Task(id)
		if err != nil {
			return err
		}
		for _, fid := range append([]string(nil), t.FolderIDs...) {
			if err := tx.Unlink(id, fid); err != nil {
				return err
			}
		}
		return tx.DeleteTask(id)
	})
	if err != nil {
		return err
	}
	m.logger.Debug("task deleted", "id", id)
	return nil
}

// MoveTask replaces the fromFolderID membership with toFolderID in one step.
func (m *Tasks) MoveTask(taskID, fromFolderID, toFolderID string) (*models.Task, error) {
	var out *models.Task
	err := m.store.Update("move_task", func(tx *store.Tx) error {
		t, err := tx.Task(taskID)
		if err != nil {
			return err
		}
		if models.IndexOf(t.FolderIDs, fromFolderID) < 0 {
			return fmt.Errorf("%w: task %s is not in folder %s", models.ErrNotFound, taskID, fromFolderID)
		}
		if fromFolderID != toFolderID {
			if err := tx.Link(taskID, toFolderID); err != nil {
				return err
			}
			if err := tx.Unlink(taskID, fromFolderID); err != nil {
				return err
			}
		}
		out = t.Clone()
		return nil
	})
	return out, err
}
