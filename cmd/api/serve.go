package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-task-go/pkg/database"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	sugar := logger.Sugar()
	sugar.Infow("starting service-task", "addr", cfg.HTTPAddr, "driver", cfg.Database.Driver)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		sugar.Errorw("db connect failed", "err", err)
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// sqlite files start empty; postgres is provisioned with init-db
	if cfg.Database.Driver == database.DriverSQLite {
		if err := database.EnsureSchema(ctx, db); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router.RegisterRoutes(sugar, db, cfg, clockwork.NewRealClock()),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	sugar.Info("service is running; press Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			sugar.Errorw("http server failed", "err", err)
			return err
		}
	}

	sugar.Info("shutting down")
	doneCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnw("http server shutdown failed", "err", err)
	}
	if err := db.PingContext(doneCtx); err != nil {
		sugar.Warnw("db ping on shutdown failed", "err", err)
	}

	sugar.Info("goodbye")
	return nil
}
