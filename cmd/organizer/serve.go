package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"go-task-organizer/internal/api"
	"go-task-organizer/internal/api/handlers"
	"go-task-organizer/internal/api/middleware"
	"go-task-organizer/internal/scheduler"
	"go-task-organizer/internal/storage"
	"go-task-organizer/internal/websocket"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the organizer HTTP API.

Pending changes are saved on the autosave interval, through POST /api/v1/save
and on shutdown.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	cfg := a.cfg

	manager := websocket.NewManager()
	defer manager.Close()
	unwatch := manager.Watch(a.store)
	defer unwatch()

	sched, err := newScheduler(ctx, a, manager)
	if err != nil {
		return a.abort(err)
	}
	sched.Start()

	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(a.logger))
	api.SetupRoutes(router, handlers.New(a.org, manager, a.logger), cfg.JWT.Secret)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", srv.Addr, "backend", cfg.Store.Backend, "auth", cfg.JWT.AuthEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			a.logger.Error("server failed", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sched.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("server shutdown", "err", err)
	}
	return a.shutdown(shutdownCtx)
}

// newScheduler registers the autosave job and, when configured, the backup
// job.
func newScheduler(ctx context.Context, a *app, manager *websocket.Manager) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.store, a.logger, scheduler.Hooks{
		OnSaved: manager.SendSaved,
		OnError: func(err error) { manager.SendSaveFailed(err.Error()) },
	})
	if err := sched.ScheduleAutosave(a.cfg.Store.AutosaveInterval); err != nil {
		return nil, fmt.Errorf("failed to schedule autosave: %w", err)
	}
	if a.cfg.Backup.Interval > 0 {
		dst, err := storage.New(ctx, a.cfg.Backup)
		if err != nil {
			return nil, err
		}
		if err := sched.ScheduleBackup(a.cfg.Backup.Interval, dst); err != nil {
			return nil, fmt.Errorf("failed to schedule backup: %w", err)
		}
	}
	return sched, nil
}
