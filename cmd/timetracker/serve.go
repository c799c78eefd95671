package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"timetracker/internal/api"
	"timetracker/internal/config"
	"timetracker/internal/notify"
	"timetracker/internal/repository"
	"timetracker/internal/service"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
				cfg.ListenAddr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringP("listen", "l", "", "Listen address (overrides LISTEN_ADDR)")
	return cmd
}

// app holds the wired services for one database handle.
type app struct {
	db      *gorm.DB
	tasks   *service.TaskService
	entries *service.TimeEntryService
	reports *service.ReportService
}

func newApp(cfg config.Config) (*app, error) {
	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	taskRepo := repository.NewTaskRepository(db)
	entryRepo := repository.NewTimeEntryRepository(db)

	taskSvc := service.NewTaskService(taskRepo, entryRepo)
	return &app{
		db:      db,
		tasks:   taskSvc,
		entries: service.NewTimeEntryService(entryRepo, taskSvc),
		reports: service.NewReportService(taskRepo, entryRepo),
	}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.ReportsEnabled() {
		scheduler, err := scheduleReports(cfg, a.reports)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	handler := api.NewHandler(
		api.NewTaskController(a.tasks, a.entries),
		api.NewTimeEntryController(a.entries),
		func(ctx context.Context) error { return repository.Ping(ctx, a.db) },
		log.New(os.Stdout, "", 0),
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[info] listening on %s", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("[info] shutdown complete")
	return nil
}

func scheduleReports(cfg config.Config, reports *service.ReportService) (*service.SchedulerService, error) {
	notifier, err := notify.New(cfg, log.Default())
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}

	scheduler := service.NewSchedulerService(time.Local)
	_, err = scheduler.Schedule("timer report", cfg.ReportInterval, cfg.ReportAt, func(ctx context.Context) error {
		text, err := reports.Summary(ctx, time.Now())
		if err != nil {
			return err
		}
		return notifier.Notify(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reports: %w", err)
	}
	return scheduler, nil
}
