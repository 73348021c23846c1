package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-task-organizer/internal/models"
)

const batchSize = 200

// Persister stores snapshots in relational tables through gorm. Each commit
// runs in one database transaction.
type Persister struct {
	db *gorm.DB
}

// NewPersister returns a Persister over an already migrated database.
func NewPersister(db *gorm.DB) *Persister {
	return &Persister{db: db}
}

// Load reads every table and rebuilds the snapshot.
func (p *Persister) Load(ctx context.Context) (*models.Snapshot, error) {
	var rs models.RecordSet
	db := p.db.WithContext(ctx)
	if err := db.Find(&rs.Folders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch folders: %w", err)
	}
	if err := db.Find(&rs.Tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	if err := db.Find(&rs.Memberships).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch memberships: %w", err)
	}
	if err := db.Find(&rs.Meta).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch store metadata: %w", err)
	}
	return models.FromRecords(&rs), nil
}

// Commit upserts every record of snap, deletes rows whose ids are gone and
// rewrites the membership edges.
func (p *Persister) Commit(ctx context.Context, snap *models.Snapshot) error {
	rs := models.ToRecords(snap)
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		folderIDs := make([]string, 0, len(rs.Folders))
		for _, f := range rs.Folders {
			folderIDs = append(folderIDs, f.ID)
		}
		taskIDs := make([]string, 0, len(rs.Tasks))
		for _, t := range rs.Tasks {
			taskIDs = append(taskIDs, t.ID)
		}
		metaKeys := make([]string, 0, len(rs.Meta))
		for _, m := range rs.Meta {
			metaKeys = append(metaKeys, m.Key)
		}

		if err := deleteAll(tx, &models.FolderTaskRecord{}); err != nil {
			return fmt.Errorf("failed to clear memberships: %w", err)
		}
		if err := upsert(tx, rs.Folders); err != nil {
			return fmt.Errorf("failed to save folders: %w", err)
		}
		if err := prune(tx, &models.FolderRecord{}, "id", folderIDs); err != nil {
			return fmt.Errorf("failed to delete folders: %w", err)
		}
		if err := upsert(tx, rs.Tasks); err != nil {
			return fmt.Errorf("failed to save tasks: %w", err)
		}
		if err := prune(tx, &models.TaskRecord{}, "id", taskIDs); err != nil {
			return fmt.Errorf("failed to delete tasks: %w", err)
		}
		if len(rs.Memberships) > 0 {
			if err := tx.CreateInBatches(rs.Memberships, batchSize).Error; err != nil {
				return fmt.Errorf("failed to save memberships: %w", err)
			}
		}
		if err := upsert(tx, rs.Meta); err != nil {
			return fmt.Errorf("failed to save store metadata: %w", err)
		}
		if err := prune(tx, &models.MetaRecord{}, "key", metaKeys); err != nil {
			return fmt.Errorf("failed to delete store metadata: %w", err)
		}
		return nil
	})
}

func upsert[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, batchSize).Error
}

// prune deletes every row of model whose column value is not in keep.
func prune(tx *gorm.DB, model interface{}, column string, keep []string) error {
	if len(keep) == 0 {
		return deleteAll(tx, model)
	}
	return tx.Where(clause.Not(clause.IN{Column: clause.Column{Name: column}, Values: toValues(keep)})).
		Delete(model).Error
}

func deleteAll(tx *gorm.DB, model interface{}) error {
	return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error
}

func toValues(ids []string) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
