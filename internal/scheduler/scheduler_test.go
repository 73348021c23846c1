package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go-task-organizer/internal/logging"
	"go-task-organizer/internal/models"
	"go-task-organizer/internal/organizer"
	"go-task-organizer/internal/storage"
	"go-task-organizer/internal/store"
)

type failingPersister struct {
	*store.MemoryPersister
}

func (f failingPersister) Commit(ctx context.Context, snap *models.Snapshot) error {
	return errors.New("disk full")
}

func TestAutosaveOnlyWhenDirty(t *testing.T) {
	p := store.NewMemoryPersister()
	s, err := store.Open(context.Background(), p)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	var saved []uint64
	sched := New(s, logging.Discard(), Hooks{OnSaved: func(v uint64) { saved = append(saved, v) }})

	sched.Autosave()
	if p.Commits() != 0 {
		t.Fatalf("clean store should not be saved, got %d commits", p.Commits())
	}

	if _, err := organizer.New(s, nil).EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}
	sched.Autosave()
	if p.Commits() != 1 {
		t.Fatalf("expected 1 commit, got %d", p.Commits())
	}
	if len(saved) != 1 || saved[0] != 1 {
		t.Errorf("OnSaved calls = %v", saved)
	}

	sched.Autosave()
	if p.Commits() != 1 {
		t.Errorf("saved store should not be saved again, got %d commits", p.Commits())
	}
}

func TestAutosaveReportsErrors(t *testing.T) {
	s, err := store.Open(context.Background(), failingPersister{store.NewMemoryPersister()})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := organizer.New(s, nil).EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}

	var got error
	New(s, logging.Discard(), Hooks{OnError: func(err error) { got = err }}).Autosave()
	if !errors.Is(got, models.ErrStorage) {
		t.Fatalf("expected storage error, got %v", got)
	}
	if !s.Dirty() {
		t.Error("store should stay dirty after a failed save")
	}
}

func TestBackupJob(t *testing.T) {
	s, err := store.Open(context.Background(), store.NewMemoryPersister())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := organizer.New(s, nil).Seed(); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	dst, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "backups"))
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	New(s, logging.Discard(), Hooks{}).Backup(dst)

	names, err := dst.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("expected one backup, got %v", names)
	}
}

func TestScheduleDisabled(t *testing.T) {
	s, err := store.Open(context.Background(), store.NewMemoryPersister())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	sched := New(s, logging.Discard(), Hooks{})
	if err := sched.ScheduleAutosave(0); err != nil {
		t.Fatalf("ScheduleAutosave(0) failed: %v", err)
	}
	if err := sched.ScheduleAutosave(time.Minute); err != nil {
		t.Fatalf("ScheduleAutosave failed: %v", err)
	}
	sched.Start()
	sched.Stop()
}
