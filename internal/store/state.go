package store

import (
	"sort"
	"strings"

	"go-task-organizer/internal/models"
)

// state is the arena: every record keyed by id, relationships held as id
// slices on the records themselves.
type state struct {
	folders map[string]*models.Folder
	tasks   map[string]*models.Task
	meta    map[string]string
	seq     uint64
}

func newState() *state {
	return &state{
		folders: make(map[string]*models.Folder),
		tasks:   make(map[string]*models.Task),
		meta:    make(map[string]string),
	}
}

func stateFromSnapshot(snap *models.Snapshot) *state {
	st := newState()
	if snap == nil {
		return st
	}
	for _, f := range snap.Folders {
		st.folders[f.ID] = f.Clone()
		if f.Seq > st.seq {
			st.seq = f.Seq
		}
	}
	for _, t := range snap.Tasks {
		st.tasks[t.ID] = t.Clone()
		if t.Seq > st.seq {
			st.seq = t.Seq
		}
	}
	for k, v := range snap.Meta {
		st.meta[k] = v
	}
	return st
}

func (st *state) clone() *state {
	c := &state{
		folders: make(map[string]*models.Folder, len(st.folders)),
		tasks:   make(map[string]*models.Task, len(st.tasks)),
		meta:    make(map[string]string, len(st.meta)),
		seq:     st.seq,
	}
	for id, f := range st.folders {
		c.folders[id] = f.Clone()
	}
	for id, t := range st.tasks {
		c.tasks[id] = t.Clone()
	}
	for k, v := range st.meta {
		c.meta[k] = v
	}
	return c
}

func (st *state) nextSeq() uint64 {
	st.seq++
	return st.seq
}

func (st *state) snapshot() *models.Snapshot {
	snap := &models.Snapshot{
		Folders: make([]*models.Folder, 0, len(st.folders)),
		Tasks:   make([]*models.Task, 0, len(st.tasks)),
		Meta:    make(map[string]string, len(st.meta)),
	}
	for _, f := range st.folders {
		snap.Folders = append(snap.Folders, f.Clone())
	}
	for _, t := range st.tasks {
		snap.Tasks = append(snap.Tasks, t.Clone())
	}
	for k, v := range st.meta {
		snap.Meta[k] = v
	}
	sort.Slice(snap.Folders, func(i, j int) bool { return snap.Folders[i].Seq < snap.Folders[j].Seq })
	sort.Slice(snap.Tasks, func(i, j int) bool { return snap.Tasks[i].Seq < snap.Tasks[j].Seq })
	return snap
}

// lessByName orders folders by name, case-insensitively first, with
// insertion order breaking exact ties.
func lessByName(a, b *models.Folder) bool {
	la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if la != lb {
		return la < lb
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Seq < b.Seq
}
