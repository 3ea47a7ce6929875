package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/config"
	"github.com/julienreichel/oc-provider-backend/internal/di"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the document schema or indexes and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.Database.IsMemory() {
			fmt.Fprintln(cmd.OutOrStdout(), "memory driver configured, nothing to migrate")
			return nil
		}

		var (
			sqlDB   *di.SQLDatabase
			mongoDB *di.MongoDatabase
			logger  *zap.Logger
		)
		app := fx.New(
			fx.Supply(cfg),
			di.MigrationModule,
			fx.NopLogger,
			fx.Populate(&sqlDB, &mongoDB, &logger),
		)

		ctx, cancel := context.WithTimeout(cmd.Context(), app.StartTimeout())
		defer cancel()
		if err := app.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), app.StopTimeout())
			defer stopCancel()
			_ = app.Stop(stopCtx)
		}()

		if err := di.RunMigrations(cmd.Context(), sqlDB, mongoDB, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Migrations applied", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
