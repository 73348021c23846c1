package store

import (
	"fmt"

	"go-task-organizer/internal/models"
)

// commitCheck enforces the structural rules every committed transaction
// must keep: at most one parentless folder, named models.RootName, and no
// task without a folder.
func commitCheck(st *state) error {
	roots := 0
	for _, f := range st.folders {
		if f.ParentID != nil {
			continue
		}
		roots++
		if f.Name != models.RootName {
			return fmt.Errorf("%w: parentless folder %q is not named %s", models.ErrInvariant, f.Name, models.RootName)
		}
	}
	if roots > 1 {
		return fmt.Errorf("%w: %d parentless folders", models.ErrInvariant, roots)
	}
	for _, t := range st.tasks {
		if len(t.FolderIDs) == 0 {
			return fmt.Errorf("%w: task %s has no folder", models.ErrInvariant, t.ID)
		}
	}
	return nil
}

// verify checks the complete invariant set: a unique root from which every
// folder is reachable, consistent parent/children edges, and bidirectional
// task membership.
func verify(st *state) error {
	if err := commitCheck(st); err != nil {
		return err
	}
	if len(st.folders) == 0 {
		if len(st.tasks) > 0 {
			return fmt.Errorf("%w: tasks without any folder", models.ErrInvariant)
		}
		return nil
	}

	var root *models.Folder
	for _, f := range st.folders {
		if err := models.ValidateName(f.Name); err != nil {
			return fmt.Errorf("folder %s: %w", f.ID, err)
		}
		if f.ParentID == nil {
			root = f
			continue
		}
		parent, ok := st.folders[*f.ParentID]
		if !ok {
			return fmt.Errorf("%w: folder %s has unknown parent %s", models.ErrInvariant, f.ID, *f.ParentID)
		}
		if n := count(parent.ChildIDs, f.ID); n != 1 {
			return fmt.Errorf("%w: folder %s listed %d times under its parent", models.ErrInvariant, f.ID, n)
		}
	}
	if root == nil {
		return fmt.Errorf("%w: no root folder", models.ErrInvariant)
	}
	for _, f := range st.folders {
		for _, childID := range f.ChildIDs {
			child, ok := st.folders[childID]
			if !ok || child.ParentID == nil || *child.ParentID != f.ID {
				return fmt.Errorf("%w: child %s of folder %s does not point back", models.ErrInvariant, childID, f.ID)
			}
		}
	}

	reached := make(map[string]bool, len(st.folders))
	queue := []string{root.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reached[id] {
			return fmt.Errorf("%w: folder %s reached twice", models.ErrInvariant, id)
		}
		reached[id] = true
		queue = append(queue, st.folders[id].ChildIDs...)
	}
	if len(reached) != len(st.folders) {
		return fmt.Errorf("%w: %d folder(s) unreachable from root", models.ErrInvariant, len(st.folders)-len(reached))
	}

	for _, f := range st.folders {
		for _, taskID := range f.TaskIDs {
			t, ok := st.tasks[taskID]
			if !ok {
				return fmt.Errorf("%w: folder %s lists unknown task %s", models.ErrInvariant, f.ID, taskID)
			}
			if count(t.FolderIDs, f.ID) != 1 || count(f.TaskIDs, taskID) != 1 {
				return fmt.Errorf("%w: membership of task %s in folder %s is inconsistent", models.ErrInvariant, taskID, f.ID)
			}
		}
	}
	for _, t := range st.tasks {
		if err := models.ValidateName(t.Name); err != nil {
			return fmt.Errorf("task %s: %w", t.ID, err)
		}
		for _, folderID := range t.FolderIDs {
			f, ok := st.folders[folderID]
			if !ok || count(f.TaskIDs, t.ID) != 1 {
				return fmt.Errorf("%w: task %s claims folder %s", models.ErrInvariant, t.ID, folderID)
			}
		}
	}
	return nil
}

func count(ids []string, id string) int {
	n := 0
	for _, v := range ids {
		if v == id {
			n++
		}
	}
	return n
}
