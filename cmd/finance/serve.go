/*
serve.go - HTTP server command

STARTUP SEQUENCE:
  1. Load and validate configuration (flags > env > file > defaults)
  2. Open the store (SQLite with migrations, or in-memory)
  3. Create API handler and router
  4. Run the HTTP server and the reminder scheduler side by side

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler after its running check finishes
  4. Close the database connection

EXAMPLES:
  finance serve --db ./data/finance.db
  finance serve --db-backend memory --port 3000
  FINANCE_REMINDERS_ENABLED=false finance serve
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/finance-engine/api"
	"github.com/warp/finance-engine/config"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/finance/store"
	"github.com/warp/finance-engine/store/sqlite"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		RunE:  runServe,
	}

	cmd.Flags().Int("port", 8080, "HTTP server port")
	cmd.Flags().String("db", "./data/finance.db", "SQLite database path (\":memory:\" allowed)")
	cmd.Flags().String("db-backend", "sqlite", "store backend (sqlite, memory)")
	cmd.Flags().Bool("reminders", true, "run the reminder scheduler")
	cmd.Flags().Int("max-days", finance.DefaultMaxProjectionDays, "longest range one projection may walk")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := appConfig
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	handler := api.NewHandler(st, logger)
	handler.ReminderWindow = cfg.Reminders.WindowDays
	handler.Projector.MaxDays = cfg.Projection.MaxDays
	router := api.NewRouter(handler, api.RouterOptions{AllowedOrigins: cfg.Server.AllowedOrigins})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	scheduler := api.NewReminderScheduler(st, logger)
	scheduler.Schedule = cfg.Reminders.Schedule
	scheduler.WindowDays = cfg.Reminders.WindowDays
	scheduler.Enabled = cfg.Reminders.Enabled

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		logger.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return scheduler.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// openStore returns the configured store and a function that releases it.
func openStore(cfg *config.Config) (finance.Store, func(), error) {
	switch cfg.DB.Backend {
	case "memory":
		logger.Warn("using in-memory store, data is lost on exit")
		return store.NewMemory(), func() {}, nil
	default:
		if err := cfg.EnsureDBDir(); err != nil {
			return nil, nil, err
		}
		st, err := sqlite.New(cfg.DB.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		logger.WithField("path", cfg.DB.Path).Info("database ready")
		return st, func() {
			if err := st.Close(); err != nil {
				logger.WithError(err).Warn("failed to close database")
			}
		}, nil
	}
}
