package store

import (
	"fmt"
	"sort"

	"go-task-organizer/internal/models"
)

// Reader exposes read access to the arena. Records it returns belong to the
// store and must not be modified or retained after the enclosing View or
// Update returns.
type Reader struct {
	st *state
}

// Folder looks up a folder by id.
func (r *Reader) Folder(id string) (*models.Folder, error) {
	f, ok := r.st.folders[id]
	if !ok {
		return nil, fmt.Errorf("%w: folder %s", models.ErrNotFound, id)
	}
	return f, nil
}

// Task looks up a task by id.
func (r *Reader) Task(id string) (*models.Task, error) {
	t, ok := r.st.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", models.ErrNotFound, id)
	}
	return t, nil
}

// Folders returns every folder sorted by name, ties broken by insertion
// order.
func (r *Reader) Folders() []*models.Folder {
	out := make([]*models.Folder, 0, len(r.st.folders))
	for _, f := range r.st.folders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return lessByName(out[i], out[j]) })
	return out
}

// Tasks returns every task in insertion order.
func (r *Reader) Tasks() []*models.Task {
	out := make([]*models.Task, 0, len(r.st.tasks))
	for _, t := range r.st.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// FolderCount returns the number of folders.
func (r *Reader) FolderCount() int { return len(r.st.folders) }

// TaskCount returns the number of tasks.
func (r *Reader) TaskCount() int { return len(r.st.tasks) }

// Root returns the parentless folder named models.RootName.
func (r *Reader) Root() (*models.Folder, error) {
	for _, f := range r.Folders() {
		if f.IsRoot() && f.Name == models.RootName {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: root folder", models.ErrNotFound)
}

// IsAncestor reports whether ancestorID is id itself or appears on the
// parent chain of id.
func (r *Reader) IsAncestor(ancestorID, id string) bool {
	seen := make(map[string]bool)
	for cur := id; cur != ""; {
		if cur == ancestorID {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		f, ok := r.st.folders[cur]
		if !ok || f.ParentID == nil {
			return false
		}
		cur = *f.ParentID
	}
	return false
}

// Subtree returns id and all of its descendants in depth-first post-order,
// so every folder comes after its descendants.
func (r *Reader) Subtree(id string) []string {
	var out []string
	var walk func(string)
	walk = func(fid string) {
		f, ok := r.st.folders[fid]
		if !ok {
			return
		}
		for _, child := range f.ChildIDs {
			walk(child)
		}
		out = append(out, fid)
	}
	walk(id)
	return out
}

// Meta returns a store metadata value.
func (r *Reader) Meta(key string) (string, bool) {
	v, ok := r.st.meta[key]
	return v, ok
}
