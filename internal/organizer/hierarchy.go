package organizer

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"go-task-organizer/internal/models"
	"go-task-organizer/internal/store"
)

// Hierarchy maintains the folder tree.
type Hierarchy struct {
	store  *store.Store
	logger *log.Logger
}

// NewHierarchy returns a Hierarchy manager over s.
func NewHierarchy(s *store.Store, logger *log.Logger) *Hierarchy {
	return &Hierarchy{store: s, logger: logger}
}

// Cascade lists the records removed by a delete.
type Cascade struct {
	FolderIDs []string `json:"folder_ids"`
	TaskIDs   []string `json:"task_ids"`
}

// FolderContents is a folder together with its direct children and tasks,
// in stored order.
type FolderContents struct {
	Folder   *models.Folder   `json:"folder"`
	Children []*models.Folder `json:"children"`
	Tasks    []*models.Task   `json:"tasks"`
}

// TreeNode is a nested view of a folder and everything below it.
type TreeNode struct {
	Folder   *models.Folder `json:"folder"`
	Tasks    []*models.Task `json:"tasks"`
	Children []*TreeNode    `json:"children"`
}

// EnsureRoot returns the root folder, creating it on first use. Concurrent
// callers always observe the same root.
func (h *Hierarchy) EnsureRoot() (*models.Folder, error) {
	var root *models.Folder
	err := h.store.View(func(r *store.Reader) error {
		f, err := r.Root()
		if err != nil {
			return err
		}
		root = f.Clone()
		return nil
	})
	if err == nil {
		return root, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	err = h.store.Update("ensure_root", func(tx *store.Tx) error {
		f, err := ensureRootTx(tx)
		if err != nil {
			return err
		}
		root = f.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

// ensureRootTx re-checks for the root under the writer lock before creating
// it.
func ensureRootTx(tx *store.Tx) (*models.Folder, error) {
	if f, err := tx.Root(); err == nil {
		return f, nil
	}
	return tx.InsertFolder(models.RootName, nil)
}

// Root returns the root folder without creating it.
func (h *Hierarchy) Root() (*models.Folder, error) {
	var root *models.Folder
	err := h.store.View(func(r *store.Reader) error {
		f, err := r.Root()
		if err != nil {
			return err
		}
		root = f.Clone()
		return nil
	})
	return root, err
}

// QueryFolders returns every folder sorted by name.
func (h *Hierarchy) QueryFolders() []*models.Folder {
	return h.store.QueryFolders()
}

// Folder returns one folder by id.
func (h *Hierarchy) Folder(id string) (*models.Folder, error) {
	var out *models.Folder
	err := h.store.View(func(r *store.Reader) error {
		f, err := r.Folder(id)
		if err != nil {
			return err
		}
		out = f.Clone()
		return nil
	})
	return out, err
}

// Contents returns a folder with its children and tasks.
func (h *Hierarchy) Contents(id string) (*FolderContents, error) {
	var out *FolderContents
	err := h.store.View(func(r *store.Reader) error {
		f, err := r.Folder(id)
		if err != nil {
			return err
		}
		out = &FolderContents{
			Folder:   f.Clone(),
			Children: make([]*models.Folder, 0, len(f.ChildIDs)),
			Tasks:    make([]*models.Task, 0, len(f.TaskIDs)),
		}
		for _, cid := range f.ChildIDs {
			c, err := r.Folder(cid)
			if err != nil {
				return err
			}
			out.Children = append(out.Children, c.Clone())
		}
		for _, tid := range f.TaskIDs {
			t, err := r.Task(tid)
			if err != nil {
				return err
			}
			out.Tasks = append(out.Tasks, t.Clone())
		}
		return nil
	})
	return out, err
}

// Tree returns the nested view below the root.
func (h *Hierarchy) Tree() (*TreeNode, error) {
	var out *TreeNode
	err := h.store.View(func(r *store.Reader) error {
		root, err := r.Root()
		if err != nil {
			return err
		}
		out, err = buildTree(r, root)
		return err
	})
	return out, err
}

func buildTree(r *store.Reader, f *models.Folder) (*TreeNode, error) {
	node := &TreeNode{
		Folder:   f.Clone(),
		Tasks:    make([]*models.Task, 0, len(f.TaskIDs)),
		Children: make([]*TreeNode, 0, len(f.ChildIDs)),
	}
	for _, tid := range f.TaskIDs {
		t, err := r.Task(tid)
		if err != nil {
			return nil, err
		}
		node.Tasks = append(node.Tasks, t.Clone())
	}
	for _, cid := range f.ChildIDs {
		c, err := r.Folder(cid)
		if err != nil {
			return nil, err
		}
		child, err := buildTree(r, c)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// CreateSubfolder creates a folder at the end of parentID's children.
func (h *Hierarchy) CreateSubfolder(parentID, name string, details *string) (*models.Folder, error) {
	var out *models.Folder
	err := h.store.Update("create_subfolder", func(tx *store.Tx) error {
		if err := models.ValidateName(name); err != nil {
			return err
		}
		if _, err := tx.Folder(parentID); err != nil {
			return err
		}
		f, err := tx.InsertFolder(name, details)
		if err != nil {
			return err
		}
		if err := tx.Attach(f.ID, parentID); err != nil {
			return err
		}
		out = f.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.logger.Debug("folder created", "id", out.ID, "parent", parentID)
	return out, nil
}

// EditFolder updates the supplied folder fields. The root keeps its name.
func (h *Hierarchy) EditFolder(id string, fields models.FolderFields) (*models.Folder, error) {
	var out *models.Folder
	err := h.store.Update("edit_folder", func(tx *store.Tx) error {
		if err := fields.Validate(); err != nil {
			return err
		}
		f, err := tx.Folder(id)
		if err != nil {
			return err
		}
		if fields.Name != nil && f.IsRoot() && *fields.Name != models.RootName {
			return fmt.Errorf("%w: the root folder cannot be renamed", models.ErrInvariant)
		}
		if fields.Name != nil {
			f.Name = *fields.Name
		}
		if fields.ClearDetails {
			f.Details = nil
		} else if fields.Details != nil {
			f.Details = store.NormalizeDetails(fields.Details)
		}
		f.UpdatedAt = tx.Now()
		out = f.Clone()
		return nil
	})
	return out, err
}

// DeleteFolder removes a folder and its descendants. Tasks left without any
// folder are deleted as well. The root cannot be deleted.
func (h *Hierarchy) DeleteFolder(id string) (*Cascade, error) {
	cascade := &Cascade{}
	err := h.store.Update("delete_folder", func(tx *store.Tx) error {
		f, err := tx.Folder(id)
		if err != nil {
			return err
		}
		if f.IsRoot() {
			return fmt.Errorf("%w: the root folder cannot be deleted", models.ErrInvariant)
		}
		for _, fid := range tx.Subtree(id) {
			folder, err := tx.Folder(fid)
			if err != nil {
				return err
			}
			for _, tid := range append([]string(nil), folder.TaskIDs...) {
				deleted, err := dropMembership(tx, tid, fid)
				if err != nil {
					return err
				}
				if deleted {
					cascade.TaskIDs = append(cascade.TaskIDs, tid)
				}
			}
			if err := tx.Detach(fid); err != nil {
				return err
			}
			if err := tx.DeleteFolder(fid); err != nil {
				return err
			}
			cascade.FolderIDs = append(cascade.FolderIDs, fid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.logger.Info("folder deleted", "id", id, "folders", len(cascade.FolderIDs), "tasks", len(cascade.TaskIDs))
	return cascade, nil
}

// MoveFolder re-attaches a folder at the end of newParentID's children.
func (h *Hierarchy) MoveFolder(id, newParentID string) (*models.Folder, error) {
	var out *models.Folder
	err := h.store.Update("move_folder", func(tx *store.Tx) error {
		f, err := tx.Folder(id)
		if err != nil {
			return err
		}
		if _, err := tx.Folder(newParentID); err != nil {
			return err
		}
		if f.IsRoot() {
			return fmt.Errorf("%w: the root folder cannot be moved", models.ErrInvariant)
		}
		if tx.IsAncestor(id, newParentID) {
			return fmt.Errorf("%w: cannot move folder %s into itself or a descendant", models.ErrInvariant, id)
		}
		if err := tx.Detach(id); err != nil {
			return err
		}
		if err := tx.Attach(id, newParentID); err != nil {
			return err
		}
		out = f.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.logger.Debug("folder moved", "id", id, "parent", newParentID)
	return out, nil
}
