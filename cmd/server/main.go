package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpadapter "boothbook/internal/adapters/http"
	"boothbook/internal/adapters/memory"
	pg "boothbook/internal/adapters/postgres"
	"boothbook/internal/config"
	"boothbook/internal/logging"
	"boothbook/internal/ports"
	companysvc "boothbook/internal/services/companies"
	contactsvc "boothbook/internal/services/contacts"
	dashboardsvc "boothbook/internal/services/dashboard"
	meetingsvc "boothbook/internal/services/meetings"
	remindersvc "boothbook/internal/services/reminders"
	"boothbook/internal/workers/reminderrunner"
)

// store is everything the services and workers need from a backend.
type store interface {
	ports.CompanyRepository
	ports.ContactRepository
	ports.MeetingRepository
	ports.ReminderRepository
	ports.ReminderQueue
	ports.SnapshotReader
	ports.Pinger
	Close()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "boothbook: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	loc := cfg.Location()
	reminders := remindersvc.New(db, logger)
	srv := httpadapter.New(httpadapter.Services{
		Companies: companysvc.New(db, logger),
		Contacts:  contactsvc.New(db, logger),
		Meetings:  meetingsvc.New(db, loc, logger),
		Reminders: reminders,
		Dashboard: dashboardsvc.New(db, loc, logger),
		Health:    db,
	}, logger)

	workers := &sync.WaitGroup{}
	if cfg.ReminderWorkers > 0 {
		notifier := reminderrunner.LogNotifier{Logger: logger.Named("notifier")}
		workers = reminderrunner.Run(ctx, db, notifier, logger, reminderrunner.Options{
			Concurrency:  cfg.ReminderWorkers,
			PollInterval: cfg.ReminderPollInterval,
		})
		logger.Info("Reminder workers started", zap.Int("workers", cfg.ReminderWorkers))
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info("Listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("env", cfg.Env),
		zap.String("timezone", loc.String()),
		zap.Bool("in_memory", cfg.InMemory()))

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		cancel()
		workers.Wait()
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", zap.Error(err))
	}
	workers.Wait()
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store, error) {
	if cfg.InMemory() {
		logger.Warn("DATABASE_URL not set, using in-memory store; data is lost on exit")
		return memory.New(), nil
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL, pg.Options{MaxConns: cfg.DBMaxConns, QueryTimeout: cfg.QueryTimeout})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, logger); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
