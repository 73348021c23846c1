package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"go-task-organizer/database/migrations"
	"go-task-organizer/internal/config"
	"go-task-organizer/internal/models"
	"go-task-organizer/internal/organizer"
	"go-task-organizer/internal/store"
)

func openTestPersister(t *testing.T) *Persister {
	t.Helper()
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "db", "organizer.db"),
	}}
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { Close(db) })
	if err := migrations.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewPersister(db)
}

func TestPersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := openTestPersister(t)

	s, err := store.Open(ctx, p)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	org := organizer.New(s, nil)
	if _, err := org.Seed(); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	root, _ := org.Root()
	school := root.ChildIDs[0]
	task, err := org.CreateTaskIn(school, models.TaskDraft{Name: "Essay", Priority: models.PriorityHigh})
	if err != nil {
		t.Fatalf("CreateTaskIn: %v", err)
	}
	if _, err := org.AddMembership(task.ID, root.ID); err != nil {
		t.Fatalf("AddMembership: %v", err)
	}
	if err := org.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := store.Open(ctx, p)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	want, got := s.Snapshot(), reopened.Snapshot()
	if len(got.Folders) != len(want.Folders) || len(got.Tasks) != len(want.Tasks) {
		t.Fatalf("reloaded %d folders, %d tasks; want %d, %d", len(got.Folders), len(got.Tasks), len(want.Folders), len(want.Tasks))
	}
	for i := range want.Folders {
		w, g := want.Folders[i], got.Folders[i]
		if w.ID != g.ID || fmt.Sprint(w.ChildIDs) != fmt.Sprint(g.ChildIDs) || fmt.Sprint(w.TaskIDs) != fmt.Sprint(g.TaskIDs) {
			t.Fatalf("folder %s reloaded as %+v, want %+v", w.Name, g, w)
		}
	}
	for i := range want.Tasks {
		w, g := want.Tasks[i], got.Tasks[i]
		if w.ID != g.ID || w.Priority != g.Priority || fmt.Sprint(w.FolderIDs) != fmt.Sprint(g.FolderIDs) {
			t.Fatalf("task %s reloaded as %+v, want %+v", w.Name, g, w)
		}
	}
	if got.Meta[models.MetaSeededAt] == "" {
		t.Fatal("seed marker not persisted")
	}
}

func TestPersisterPrunesDeletedRows(t *testing.T) {
	ctx := context.Background()
	p := openTestPersister(t)

	s, err := store.Open(ctx, p)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	org := organizer.New(s, nil)
	root, err := org.EnsureRoot()
	if err != nil {
		t.Fatalf("EnsureRoot: %v", err)
	}
	school, _ := org.CreateSubfolder(root.ID, "School", nil)
	if _, err := org.CreateTaskIn(school.ID, models.TaskDraft{Name: "Essay"}); err != nil {
		t.Fatalf("CreateTaskIn: %v", err)
	}
	if err := org.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := org.DeleteFolder(school.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if err := org.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Folders) != 1 || len(snap.Tasks) != 0 {
		t.Fatalf("persisted %d folders and %d tasks, want 1 and 0", len(snap.Folders), len(snap.Tasks))
	}
	if len(snap.Folders[0].TaskIDs) != 0 || len(snap.Folders[0].ChildIDs) != 0 {
		t.Fatalf("root still has edges: %+v", snap.Folders[0])
	}
}
