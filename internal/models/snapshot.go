package models

// MetaSeededAt records when sample content was seeded.
const MetaSeededAt = "seeded_at"

// Snapshot is the full persisted state of a store.
type Snapshot struct {
	Folders []*Folder         `json:"folders" yaml:"folders"`
	Tasks   []*Task           `json:"tasks" yaml:"tasks"`
	Meta    map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Empty reports whether the snapshot holds no records.
func (s *Snapshot) Empty() bool {
	return s == nil || (len(s.Folders) == 0 && len(s.Tasks) == 0)
}
