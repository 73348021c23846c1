// Package scheduler runs the periodic autosave and backup jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron"

	"go-task-organizer/internal/models"
	"go-task-organizer/internal/storage"
)

// Saver is the part of the store the autosave job needs.
type Saver interface {
	Dirty() bool
	Version() uint64
	Save(ctx context.Context) error
	Snapshot() *models.Snapshot
}

// Hooks are called after each autosave attempt.
type Hooks struct {
	OnSaved func(version uint64)
	OnError func(err error)
}

// Scheduler wraps a gocron scheduler.
type Scheduler struct {
	cron    *gocron.Scheduler
	store   Saver
	logger  *log.Logger
	hooks   Hooks
	timeout time.Duration
}

// New returns a stopped scheduler for store.
func New(store Saver, logger *log.Logger, hooks Hooks) *Scheduler {
	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()
	return &Scheduler{
		cron:    cron,
		store:   store,
		logger:  logger,
		hooks:   hooks,
		timeout: 30 * time.Second,
	}
}

// ScheduleAutosave saves the store every interval when it has unsaved
// changes. A zero interval disables the job.
func (s *Scheduler) ScheduleAutosave(interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	_, err := s.cron.Every(interval).WaitForSchedule().Do(s.Autosave)
	if err != nil {
		return err
	}
	s.logger.Info("autosave scheduled", "interval", interval)
	return nil
}

// ScheduleBackup uploads a JSON snapshot to dst every interval. A zero
// interval disables the job.
func (s *Scheduler) ScheduleBackup(interval time.Duration, dst storage.Storage) error {
	if interval <= 0 || dst == nil {
		return nil
	}
	_, err := s.cron.Every(interval).WaitForSchedule().Do(func() { s.Backup(dst) })
	if err != nil {
		return err
	}
	s.logger.Info("backup scheduled", "interval", interval)
	return nil
}

// Start runs the scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.StartAsync()
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Autosave saves the store if it has unsaved changes.
func (s *Scheduler) Autosave() {
	if !s.store.Dirty() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	version := s.store.Version()
	if err := s.store.Save(ctx); err != nil {
		s.logger.Error("autosave failed", "err", err)
		if s.hooks.OnError != nil {
			s.hooks.OnError(err)
		}
		return
	}
	if s.hooks.OnSaved != nil {
		s.hooks.OnSaved(version)
	}
}

// Backup uploads the current snapshot to dst.
func (s *Scheduler) Backup(dst storage.Storage) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key, err := storage.Backup(ctx, dst, s.store.Snapshot(), time.Now())
	if err != nil {
		s.logger.Error("backup failed", "err", err)
		return
	}
	s.logger.Info("backup written", "key", key)
}
