package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-task-go/pkg/database"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the users, tasks and comments tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), "init-db", database.EnsureSchema)
	},
}

var resetDBCmd = &cobra.Command{
	Use:   "reset-db",
	Short: "Drop and recreate every table (destroys all data)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), "reset-db", database.ResetSchema)
	},
}

func withDB(ctx context.Context, op string, fn func(context.Context, *sqlx.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := fn(ctx, db); err != nil {
		logger.Sugar().Errorw(op+" failed", "err", err)
		return err
	}
	logger.Sugar().Infow(op+" done", "driver", cfg.Database.Driver)
	return nil
}
