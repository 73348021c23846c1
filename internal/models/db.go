package models

import (
	"sort"
	"time"
)

// FolderRecord is the persisted row of a Folder. Position orders siblings
// within the parent's children.
type FolderRecord struct {
	ID        string  `gorm:"primaryKey;size:36"`
	Name      string  `gorm:"not null"`
	Details   *string
	ParentID  *string `gorm:"size:36;index"`
	Position  int     `gorm:"not null;default:0"`
	Seq       uint64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for folders
func (FolderRecord) TableName() string {
	return "folders"
}

// TaskRecord is the persisted row of a Task.
type TaskRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"not null"`
	Details   *string
	DueDate   *time.Time
	Priority  string `gorm:"not null;default:medium"`
	IsDone    bool   `gorm:"not null;default:false"`
	Seq       uint64 `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for tasks
func (TaskRecord) TableName() string {
	return "tasks"
}

// FolderTaskRecord is one membership edge. TaskPosition is the task's index
// in the folder's task list, FolderPosition the folder's index in the task's
// folder list.
type FolderTaskRecord struct {
	FolderID       string `gorm:"primaryKey;size:36"`
	TaskID         string `gorm:"primaryKey;size:36;index"`
	TaskPosition   int    `gorm:"not null"`
	FolderPosition int    `gorm:"not null"`
}

// TableName specifies the table name for memberships
func (FolderTaskRecord) TableName() string {
	return "folder_tasks"
}

// MetaRecord is a key/value pair of store metadata.
type MetaRecord struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string
}

// TableName specifies the table name for store metadata
func (MetaRecord) TableName() string {
	return "store_meta"
}

// Records lists every persisted model, in migration order.
func Records() []interface{} {
	return []interface{}{
		&FolderRecord{},
		&TaskRecord{},
		&FolderTaskRecord{},
		&MetaRecord{},
	}
}

// RecordSet is a snapshot flattened into rows.
type RecordSet struct {
	Folders     []FolderRecord
	Tasks       []TaskRecord
	Memberships []FolderTaskRecord
	Meta        []MetaRecord
}

// ToRecords flattens a snapshot into rows, deriving positions from the
// order of the edge slices.
func ToRecords(s *Snapshot) *RecordSet {
	rs := &RecordSet{}
	if s == nil {
		return rs
	}

	position := make(map[string]int)
	for _, f := range s.Folders {
		for i, id := range f.ChildIDs {
			position[id] = i
		}
	}
	taskFolderPos := make(map[string]map[string]int)
	for _, t := range s.Tasks {
		m := make(map[string]int, len(t.FolderIDs))
		for i, id := range t.FolderIDs {
			m[id] = i
		}
		taskFolderPos[t.ID] = m
	}

	for _, f := range s.Folders {
		rs.Folders = append(rs.Folders, FolderRecord{
			ID:        f.ID,
			Name:      f.Name,
			Details:   cloneString(f.Details),
			ParentID:  cloneString(f.ParentID),
			Position:  position[f.ID],
			Seq:       f.Seq,
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
		})
		for i, taskID := range f.TaskIDs {
			rs.Memberships = append(rs.Memberships, FolderTaskRecord{
				FolderID:       f.ID,
				TaskID:         taskID,
				TaskPosition:   i,
				FolderPosition: taskFolderPos[taskID][f.ID],
			})
		}
	}
	for _, t := range s.Tasks {
		rs.Tasks = append(rs.Tasks, TaskRecord{
			ID:        t.ID,
			Name:      t.Name,
			Details:   cloneString(t.Details),
			DueDate:   cloneTime(t.DueDate),
			Priority:  string(t.Priority),
			IsDone:    t.IsDone,
			Seq:       t.Seq,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		})
	}
	keys := make([]string, 0, len(s.Meta))
	for k := range s.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rs.Meta = append(rs.Meta, MetaRecord{Key: k, Value: s.Meta[k]})
	}
	return rs
}

// FromRecords rebuilds a snapshot from rows, restoring edge order from the
// stored positions.
func FromRecords(rs *RecordSet) *Snapshot {
	s := &Snapshot{Meta: make(map[string]string)}
	folders := make(map[string]*Folder, len(rs.Folders))
	positions := make(map[string]int, len(rs.Folders))
	for _, r := range rs.Folders {
		f := &Folder{
			ID:        r.ID,
			Name:      r.Name,
			Details:   cloneString(r.Details),
			ParentID:  cloneString(r.ParentID),
			Seq:       r.Seq,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
		folders[r.ID] = f
		positions[r.ID] = r.Position
		s.Folders = append(s.Folders, f)
	}
	tasks := make(map[string]*Task, len(rs.Tasks))
	for _, r := range rs.Tasks {
		p := Priority(r.Priority)
		if !p.Valid() {
			p = PriorityMedium
		}
		t := &Task{
			ID:        r.ID,
			Name:      r.Name,
			Details:   cloneString(r.Details),
			DueDate:   cloneTime(r.DueDate),
			Priority:  p,
			IsDone:    r.IsDone,
			Seq:       r.Seq,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
		tasks[r.ID] = t
		s.Tasks = append(s.Tasks, t)
	}
	sort.Slice(s.Folders, func(i, j int) bool { return s.Folders[i].Seq < s.Folders[j].Seq })
	sort.Slice(s.Tasks, func(i, j int) bool { return s.Tasks[i].Seq < s.Tasks[j].Seq })

	// Children in sibling order.
	for _, f := range s.Folders {
		if f.ParentID == nil {
			continue
		}
		if parent, ok := folders[*f.ParentID]; ok {
			parent.ChildIDs = append(parent.ChildIDs, f.ID)
		}
	}
	for _, f := range s.Folders {
		sort.SliceStable(f.ChildIDs, func(i, j int) bool {
			return positions[f.ChildIDs[i]] < positions[f.ChildIDs[j]]
		})
	}

	edges := append([]FolderTaskRecord(nil), rs.Memberships...)
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].TaskPosition < edges[j].TaskPosition })
	for _, e := range edges {
		if f, ok := folders[e.FolderID]; ok {
			f.TaskIDs = append(f.TaskIDs, e.TaskID)
		}
	}
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].FolderPosition < edges[j].FolderPosition })
	for _, e := range edges {
		if t, ok := tasks[e.TaskID]; ok {
			t.FolderIDs = append(t.FolderIDs, e.FolderID)
		}
	}

	for _, m := range rs.Meta {
		s.Meta[m.Key] = m.Value
	}
	return s
}
