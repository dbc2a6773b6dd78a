package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/app"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/config"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/connection"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the HR workflow database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Create or update every table",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), configPath, app.Migrate)
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert the default roles and permissions",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), configPath, app.Seed)
			},
		},
	)
	return root
}

func withDB(ctx context.Context, configPath string, fn func(context.Context, *gorm.DB, *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := connection.ConnectGORMWithRetry(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return fn(ctx, db, logger)
}
