package models

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority parses a case-insensitive priority name. An empty string
// yields the default, medium.
func ParsePriority(s string) (Priority, error) {
	if strings.TrimSpace(s) == "" {
		return PriorityMedium, nil
	}
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, s)
	}
	return p, nil
}

// Task is a to-do item linked into one or more folders.
type Task struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Details   *string    `json:"details,omitempty" yaml:"details,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Priority  Priority   `json:"priority" yaml:"priority"`
	IsDone    bool       `json:"is_done" yaml:"is_done"`
	FolderIDs []string   `json:"folders" yaml:"folders"`
	Seq       uint64     `json:"-" yaml:"seq"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"updated_at"`
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	c.Details = cloneString(t.Details)
	c.DueDate = cloneTime(t.DueDate)
	c.FolderIDs = append([]string(nil), t.FolderIDs...)
	return &c
}

// TaskFields holds an optional set of task field updates. Nil pointers leave
// the field untouched; ClearDetails and ClearDueDate reset the optional
// fields to empty.
type TaskFields struct {
	Name         *string    `json:"name,omitempty"`
	Details      *string    `json:"details,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Priority     *Priority  `json:"priority,omitempty"`
	ClearDetails bool       `json:"clear_details,omitempty"`
	ClearDueDate bool       `json:"clear_due_date,omitempty"`
}

// Validate checks the supplied fields without touching any task.
func (f TaskFields) Validate() error {
	if f.Name != nil {
		if err := ValidateName(*f.Name); err != nil {
			return err
		}
	}
	if f.Priority != nil && !f.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, *f.Priority)
	}
	return nil
}

// ValidateName rejects empty or blank display names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return nil
}

// TaskDraft carries the fields of a task about to be created.
type TaskDraft struct {
	Name     string     `json:"name"`
	Details  *string    `json:"details,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Priority Priority   `json:"priority,omitempty"`
}
