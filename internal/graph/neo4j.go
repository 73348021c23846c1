// Package graph stores organizer snapshots in Neo4j: folders and tasks are
// nodes, parent links and memberships are relationships.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"go-task-organizer/internal/config"
	"go-task-organizer/internal/models"
)

// Connect creates a driver and checks that the server is reachable.
func Connect(ctx context.Context, cfg config.Neo4jConfig) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach neo4j: %w", err)
	}
	return driver, nil
}

// Persister implements snapshot load/commit on a Neo4j database.
type Persister struct {
	driver neo4j.DriverWithContext
}

// NewPersister returns a Persister using driver.
func NewPersister(driver neo4j.DriverWithContext) *Persister {
	return &Persister{driver: driver}
}

var constraints = []string{
	"CREATE CONSTRAINT folder_id IF NOT EXISTS FOR (f:Folder) REQUIRE f.id IS UNIQUE",
	"CREATE CONSTRAINT task_id IF NOT EXISTS FOR (t:Task) REQUIRE t.id IS UNIQUE",
	"CREATE CONSTRAINT meta_key IF NOT EXISTS FOR (m:Meta) REQUIRE m.key IS UNIQUE",
}

// Migrate creates the uniqueness constraints.
func (p *Persister) Migrate(ctx context.Context) error {
	session := p.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, stmt := range constraints {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("failed to create constraint: %w", err)
		}
	}
	return nil
}

// Load reads all organizer nodes and relationships.
func (p *Persister) Load(ctx context.Context) (*models.Snapshot, error) {
	session := p.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		var rs models.RecordSet

		res, err := tx.Run(ctx,
			"MATCH (f:Folder) "+
				"OPTIONAL MATCH (f)-[c:CHILD_OF]->(p:Folder) "+
				"RETURN f.id AS id, f.name AS name, f.details AS details, f.seq AS seq, "+
				"f.created_at AS created_at, f.updated_at AS updated_at, p.id AS parent_id, c.position AS position",
			nil,
		)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			rec := res.Record()
			rs.Folders = append(rs.Folders, models.FolderRecord{
				ID:        str(rec, "id"),
				Name:      str(rec, "name"),
				Details:   optStr(rec, "details"),
				ParentID:  optStr(rec, "parent_id"),
				Position:  int(num(rec, "position")),
				Seq:       uint64(num(rec, "seq")),
				CreatedAt: tm(rec, "created_at"),
				UpdatedAt: tm(rec, "updated_at"),
			})
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx,
			"MATCH (t:Task) "+
				"RETURN t.id AS id, t.name AS name, t.details AS details, t.due_date AS due_date, "+
				"t.priority AS priority, t.is_done AS is_done, t.seq AS seq, "+
				"t.created_at AS created_at, t.updated_at AS updated_at",
			nil,
		)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			rec := res.Record()
			var due *time.Time
			if v, ok := rec.Get("due_date"); ok && v != nil {
				if d, ok := v.(time.Time); ok {
					due = &d
				}
			}
			done, _ := get(rec, "is_done").(bool)
			rs.Tasks = append(rs.Tasks, models.TaskRecord{
				ID:        str(rec, "id"),
				Name:      str(rec, "name"),
				Details:   optStr(rec, "details"),
				DueDate:   due,
				Priority:  str(rec, "priority"),
				IsDone:    done,
				Seq:       uint64(num(rec, "seq")),
				CreatedAt: tm(rec, "created_at"),
				UpdatedAt: tm(rec, "updated_at"),
			})
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx,
			"MATCH (t:Task)-[m:IN_FOLDER]->(f:Folder) "+
				"RETURN f.id AS folder_id, t.id AS task_id, m.task_position AS task_position, m.folder_position AS folder_position",
			nil,
		)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			rec := res.Record()
			rs.Memberships = append(rs.Memberships, models.FolderTaskRecord{
				FolderID:       str(rec, "folder_id"),
				TaskID:         str(rec, "task_id"),
				TaskPosition:   int(num(rec, "task_position")),
				FolderPosition: int(num(rec, "folder_position")),
			})
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx, "MATCH (m:Meta) RETURN m.key AS key, m.value AS value", nil)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			rec := res.Record()
			rs.Meta = append(rs.Meta, models.MetaRecord{Key: str(rec, "key"), Value: str(rec, "value")})
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return &rs, nil
	})
	if err != nil {
		return nil, err
	}
	return models.FromRecords(result.(*models.RecordSet)), nil
}

// Commit replaces every organizer node in a single write transaction.
func (p *Persister) Commit(ctx context.Context, snap *models.Snapshot) error {
	params := commitParams(models.ToRecords(snap))

	session := p.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		statements := []string{
			"MATCH (n) WHERE n:Folder OR n:Task OR n:Meta DETACH DELETE n",
			"UNWIND $folders AS f " +
				"CREATE (:Folder {id: f.id, name: f.name, details: f.details, seq: f.seq, " +
				"created_at: f.created_at, updated_at: f.updated_at})",
			"UNWIND $tasks AS t " +
				"CREATE (:Task {id: t.id, name: t.name, details: t.details, due_date: t.due_date, " +
				"priority: t.priority, is_done: t.is_done, seq: t.seq, " +
				"created_at: t.created_at, updated_at: t.updated_at})",
			"UNWIND $parents AS e " +
				"MATCH (child:Folder {id: e.child_id}), (parent:Folder {id: e.parent_id}) " +
				"CREATE (child)-[:CHILD_OF {position: e.position}]->(parent)",
			"UNWIND $memberships AS m " +
				"MATCH (t:Task {id: m.task_id}), (f:Folder {id: m.folder_id}) " +
				"CREATE (t)-[:IN_FOLDER {task_position: m.task_position, folder_position: m.folder_position}]->(f)",
			"UNWIND $meta AS m CREATE (:Meta {key: m.key, value: m.value})",
		}
		for _, stmt := range statements {
			if _, err := tx.Run(ctx, stmt, params); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// commitParams converts rows into Cypher parameter lists.
func commitParams(rs *models.RecordSet) map[string]any {
	folders := make([]map[string]any, 0, len(rs.Folders))
	parents := make([]map[string]any, 0, len(rs.Folders))
	for _, f := range rs.Folders {
		folders = append(folders, map[string]any{
			"id":         f.ID,
			"name":       f.Name,
			"details":    deref(f.Details),
			"seq":        int64(f.Seq),
			"created_at": f.CreatedAt,
			"updated_at": f.UpdatedAt,
		})
		if f.ParentID != nil {
			parents = append(parents, map[string]any{
				"child_id":  f.ID,
				"parent_id": *f.ParentID,
				"position":  int64(f.Position),
			})
		}
	}
	tasks := make([]map[string]any, 0, len(rs.Tasks))
	for _, t := range rs.Tasks {
		var due any
		if t.DueDate != nil {
			due = *t.DueDate
		}
		tasks = append(tasks, map[string]any{
			"id":         t.ID,
			"name":       t.Name,
			"details":    deref(t.Details),
			"due_date":   due,
			"priority":   t.Priority,
			"is_done":    t.IsDone,
			"seq":        int64(t.Seq),
			"created_at": t.CreatedAt,
			"updated_at": t.UpdatedAt,
		})
	}
	memberships := make([]map[string]any, 0, len(rs.Memberships))
	for _, m := range rs.Memberships {
		memberships = append(memberships, map[string]any{
			"folder_id":       m.FolderID,
			"task_id":         m.TaskID,
			"task_position":   int64(m.TaskPosition),
			"folder_position": int64(m.FolderPosition),
		})
	}
	meta := make([]map[string]any, 0, len(rs.Meta))
	for _, m := range rs.Meta {
		meta = append(meta, map[string]any{"key": m.Key, "value": m.Value})
	}
	return map[string]any{
		"folders":     folders,
		"tasks":       tasks,
		"parents":     parents,
		"memberships": memberships,
		"meta":        meta,
	}
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func get(rec *neo4j.Record, key string) any {
	v, _ := rec.Get(key)
	return v
}

func str(rec *neo4j.Record, key string) string {
	s, _ := get(rec, key).(string)
	return s
}

func optStr(rec *neo4j.Record, key string) *string {
	s, ok := get(rec, key).(string)
	if !ok {
		return nil
	}
	return &s
}

func num(rec *neo4j.Record, key string) int64 {
	n, _ := get(rec, key).(int64)
	return n
}

func tm(rec *neo4j.Record, key string) time.Time {
	t, _ := get(rec, key).(time.Time)
	return t
}
