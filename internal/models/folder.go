package models

import "time"

// RootName is the name of the singleton parentless folder.
const RootName = "Root"

// Folder is a node in the folder tree. Relationships are stored as ids:
// ParentID is a back-reference, ChildIDs owns the subtree and TaskIDs is a
// non-owning membership list.
type Folder struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Details   *string   `json:"details,omitempty" yaml:"details,omitempty"`
	ParentID  *string   `json:"parent_id" yaml:"parent_id"`
	ChildIDs  []string  `json:"children" yaml:"children"`
	TaskIDs   []string  `json:"tasks" yaml:"tasks"`
	Seq       uint64    `json:"-" yaml:"seq"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// IsRoot reports whether f has no parent.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// Clone returns a deep copy of f.
func (f *Folder) Clone() *Folder {
	c := *f
	c.Details = cloneString(f.Details)
	c.ParentID = cloneString(f.ParentID)
	c.ChildIDs = append([]string(nil), f.ChildIDs...)
	c.TaskIDs = append([]string(nil), f.TaskIDs...)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// IndexOf returns the position of id in ids, or -1.
func IndexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// RemoveID returns ids without the first occurrence of id.
func RemoveID(ids []string, id string) []string {
	i := IndexOf(ids, id)
	if i < 0 {
		return ids
	}
	return append(ids[:i:i], ids[i+1:]...)
}

// FolderFields holds an optional set of folder field updates.
type FolderFields struct {
	Name         *string `json:"name,omitempty"`
	Details      *string `json:"details,omitempty"`
	ClearDetails bool    `json:"clear_details,omitempty"`
}

// Validate checks the supplied fields without touching any folder.
func (f FolderFields) Validate() error {
	if f.Name != nil {
		return ValidateName(*f.Name)
	}
	return nil
}
