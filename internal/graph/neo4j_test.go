package graph

import (
	"context"
	"os"
	"testing"
	"time"

	"go-task-organizer/internal/config"
	"go-task-organizer/internal/models"
)

func sampleSnapshot() *models.Snapshot {
	now := time.Date(2025, 12, 26, 9, 0, 0, 0, time.UTC)
	details := "coursework"
	root := &models.Folder{ID: "root", Name: models.RootName, ChildIDs: []string{"school"}, TaskIDs: []string{"t1"}, Seq: 1, CreatedAt: now, UpdatedAt: now}
	parent := "root"
	school := &models.Folder{ID: "school", Name: "School", Details: &details, ParentID: &parent, TaskIDs: []string{"t1"}, Seq: 2, CreatedAt: now, UpdatedAt: now}
	task := &models.Task{ID: "t1", Name: "Finish homework", Priority: models.PriorityHigh, DueDate: &now, FolderIDs: []string{"school", "root"}, Seq: 3, CreatedAt: now, UpdatedAt: now}
	return &models.Snapshot{
		Folders: []*models.Folder{root, school},
		Tasks:   []*models.Task{task},
		Meta:    map[string]string{models.MetaSeededAt: now.Format(time.RFC3339)},
	}
}

func TestCommitParams(t *testing.T) {
	params := commitParams(models.ToRecords(sampleSnapshot()))

	folders := params["folders"].([]map[string]any)
	if len(folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(folders))
	}
	if folders[0]["details"] != nil {
		t.Errorf("root details should be nil, got %v", folders[0]["details"])
	}
	if folders[1]["details"] != "coursework" {
		t.Errorf("school details = %v", folders[1]["details"])
	}

	parents := params["parents"].([]map[string]any)
	if len(parents) != 1 || parents[0]["child_id"] != "school" || parents[0]["parent_id"] != "root" {
		t.Errorf("unexpected parent edges: %v", parents)
	}

	memberships := params["memberships"].([]map[string]any)
	if len(memberships) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(memberships))
	}
	for _, m := range memberships {
		if m["folder_id"] == "root" && m["folder_position"] != int64(1) {
			t.Errorf("root should be the task's second folder, got %v", m["folder_position"])
		}
	}

	tasks := params["tasks"].([]map[string]any)
	if tasks[0]["priority"] != "high" {
		t.Errorf("priority = %v", tasks[0]["priority"])
	}
}

func TestPersisterRoundTrip(t *testing.T) {
	uri := os.Getenv("NEO4J_TEST_URI")
	if uri == "" {
		t.Skip("NEO4J_TEST_URI not set")
	}
	ctx := context.Background()
	driver, err := Connect(ctx, config.Neo4jConfig{
		URI:      uri,
		User:     os.Getenv("NEO4J_TEST_USER"),
		Password: os.Getenv("NEO4J_TEST_PASSWORD"),
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer driver.Close(ctx)

	p := NewPersister(driver)
	if err := p.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := p.Commit(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	snap, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Folders) != 2 || len(snap.Tasks) != 1 {
		t.Fatalf("got %d folders and %d tasks", len(snap.Folders), len(snap.Tasks))
	}
	task := snap.Tasks[0]
	if len(task.FolderIDs) != 2 || task.FolderIDs[0] != "school" || task.FolderIDs[1] != "root" {
		t.Errorf("task folders out of order: %v", task.FolderIDs)
	}
}
