package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"go-task-organizer/internal/models"
)

// Tx is a write transaction over a staged copy of the arena. Changes made
// through it become visible only when the enclosing Update returns nil.
type Tx struct {
	*Reader
	now time.Time
}

// Now returns the transaction timestamp.
func (tx *Tx) Now() time.Time {
	return tx.now
}

// InsertFolder creates an unparented, childless, taskless folder.
func (tx *Tx) InsertFolder(name string, details *string) (*models.Folder, error) {
	if err := models.ValidateName(name); err != nil {
		return nil, err
	}
	f := &models.Folder{
		ID:        uuid.New().String(),
		Name:      name,
		Details:   NormalizeDetails(details),
		Seq:       tx.st.nextSeq(),
		CreatedAt: tx.now,
		UpdatedAt: tx.now,
	}
	tx.st.folders[f.ID] = f
	return f, nil
}

// InsertTask creates a task with no folder memberships. An empty priority
// defaults to medium.
func (tx *Tx) InsertTask(name string, details *string, dueDate *time.Time, priority models.Priority) (*models.Task, error) {
	if err := models.ValidateName(name); err != nil {
		return nil, err
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", models.ErrValidation, priority)
	}
	t := &models.Task{
		ID:        uuid.New().String(),
		Name:      name,
		Details:   NormalizeDetails(details),
		Priority:  priority,
		Seq:       tx.st.nextSeq(),
		CreatedAt: tx.now,
		UpdatedAt: tx.now,
	}
	if dueDate != nil {
		d := *dueDate
		t.DueDate = &d
	}
	tx.st.tasks[t.ID] = t
	return t, nil
}

// Attach appends an unparented folder to parentID's children.
func (tx *Tx) Attach(childID, parentID string) error {
	child, err := tx.Folder(childID)
	if err != nil {
		return err
	}
	parent, err := tx.Folder(parentID)
	if err != nil {
		return err
	}
	if child.ParentID != nil {
		return fmt.Errorf("%w: folder %s already has a parent", models.ErrInvariant, childID)
	}
	if tx.IsAncestor(childID, parentID) {
		return fmt.Errorf("%w: folder %s cannot contain itself", models.ErrInvariant, childID)
	}
	pid := parent.ID
	child.ParentID = &pid
	child.UpdatedAt = tx.now
	parent.ChildIDs = append(parent.ChildIDs, child.ID)
	parent.UpdatedAt = tx.now
	return nil
}

// Detach removes a folder from its parent's children.
func (tx *Tx) Detach(childID string) error {
	child, err := tx.Folder(childID)
	if err != nil {
		return err
	}
	if child.ParentID == nil {
		return nil
	}
	if parent, ok := tx.st.folders[*child.ParentID]; ok {
		parent.ChildIDs = models.RemoveID(parent.ChildIDs, childID)
		parent.UpdatedAt = tx.now
	}
	child.ParentID = nil
	child.UpdatedAt = tx.now
	return nil
}

// Link adds the membership edge between a task and a folder on both sides.
// Linking an existing member is a no-op.
func (tx *Tx) Link(taskID, folderID string) error {
	t, err := tx.Task(taskID)
	if err != nil {
		return err
	}
	f, err := tx.Folder(folderID)
	if err != nil {
		return err
	}
	if models.IndexOf(t.FolderIDs, folderID) >= 0 {
		return nil
	}
	t.FolderIDs = append(t.FolderIDs, f.ID)
	t.UpdatedAt = tx.now
	f.TaskIDs = append(f.TaskIDs, t.ID)
	f.UpdatedAt = tx.now
	return nil
}

// Unlink removes the membership edge between a task and a folder on both
// sides.
func (tx *Tx) Unlink(taskID, folderID string) error {
	t, err := tx.Task(taskID)
	if err != nil {
		return err
	}
	f, err := tx.Folder(folderID)
	if err != nil {
		return err
	}
	if models.IndexOf(t.FolderIDs, folderID) < 0 {
		return fmt.Errorf("%w: task %s is not in folder %s", models.ErrNotFound, taskID, folderID)
	}
	t.FolderIDs = models.RemoveID(t.FolderIDs, folderID)
	t.UpdatedAt = tx.now
	f.TaskIDs = models.RemoveID(f.TaskIDs, taskID)
	f.UpdatedAt = tx.now
	return nil
}

// DeleteFolder removes a folder record. The folder must already be detached
// and empty.
func (tx *Tx) DeleteFolder(id string) error {
	f, err := tx.Folder(id)
	if err != nil {
		return err
	}
	if f.ParentID != nil || len(f.ChildIDs) > 0 || len(f.TaskIDs) > 0 {
		return fmt.Errorf("%w: folder %s is still referenced", models.ErrInvariant, id)
	}
	delete(tx.st.folders, id)
	return nil
}

// DeleteTask removes a task record. The task must have no memberships left.
func (tx *Tx) DeleteTask(id string) error {
	t, err := tx.Task(id)
	if err != nil {
		return err
	}
	if len(t.FolderIDs) > 0 {
		return fmt.Errorf("%w: task %s is still in %d folder(s)", models.ErrInvariant, id, len(t.FolderIDs))
	}
	delete(tx.st.tasks, id)
	return nil
}

// SetMeta stores a metadata value.
func (tx *Tx) SetMeta(key, value string) {
	tx.st.meta[key] = value
}

// NormalizeDetails copies a description, mapping an empty one to nil.
func NormalizeDetails(details *string) *string {
	if details == nil || *details == "" {
		return nil
	}
	d := *details
	return &d
}
