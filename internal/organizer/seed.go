package organizer

import (
	"time"

	"go-task-organizer/internal/models"
	"go-task-organizer/internal/store"
)

var (
	sampleFolders = []string{"School", "Programming"}
	sampleTasks   = []string{"Finish homework", "Buy groceries", "Learn Swift"}
)

// Seed makes sure the root exists and, once per install, fills an empty
// root with sample folders and tasks. A root that already holds content is
// left alone and the install is marked as seeded. It reports whether sample
// content was created.
func (o *Organizer) Seed() (bool, error) {
	var done bool
	_ = o.store.View(func(r *store.Reader) error {
		_, err := r.Root()
		_, marked := r.Meta(models.MetaSeededAt)
		done = err == nil && marked
		return nil
	})
	if done {
		return false, nil
	}

	var seeded bool
	err := o.store.Update("seed", func(tx *store.Tx) error {
		root, err := ensureRootTx(tx)
		if err != nil {
			return err
		}
		if _, done := tx.Meta(models.MetaSeededAt); done {
			return nil
		}
		tx.SetMeta(models.MetaSeededAt, tx.Now().Format(time.RFC3339))
		if len(root.ChildIDs) > 0 || len(root.TaskIDs) > 0 {
			return nil
		}

		for _, name := range sampleFolders {
			f, err := tx.InsertFolder(name, nil)
			if err != nil {
				return err
			}
			if err := tx.Attach(f.ID, root.ID); err != nil {
				return err
			}
		}
		for _, name := range sampleTasks {
			t, err := tx.InsertTask(name, nil, nil, models.PriorityMedium)
			if err != nil {
				return err
			}
			if err := tx.Link(t.ID, root.ID); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if seeded {
		o.logger.Info("sample content seeded", "folders", len(sampleFolders), "tasks", len(sampleTasks))
	}
	return seeded, nil
}
