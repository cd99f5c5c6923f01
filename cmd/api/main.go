// Package main runs the task management API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-task-go/pkg/utilities"
)

var (
	// configFile is set by the --config flag.
	configFile string

	v = config.New()

	// cfg and logger are initialized by PersistentPreRunE.
	cfg    *config.AppConfig
	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "service-task",
	Short: "Task management REST API",
	Long: `service-task serves a JSON API for users, tasks, comments and task
statistics backed by Postgres or SQLite. Without a subcommand it runs the
HTTP server.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("addr", "", "HTTP listen address (env HTTP_ADDR)")
	flags.String("db-driver", "", "database driver: postgres or sqlite (env DATABASE_DRIVER)")
	flags.String("db-url", "", "database URL or sqlite file path (env DATABASE_URL)")
	bind("addr", config.KeyHTTPAddr)
	bind("db-driver", config.KeyDatabaseDriver)
	bind("db-url", config.KeyDatabaseURL)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(resetDBCmd)
}

func bind(flag, key string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// setup loads .env (best effort), resolves configuration and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load(v, configFile)
	if err != nil {
		return err
	}
	logger, err = utilities.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	return nil
}
