package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/config"
	"github.com/julienreichel/oc-provider-backend/internal/di"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.App.Version == "" || cfg.App.Version == "dev" {
			cfg.App.Version = version
		}

		app := fx.New(
			fx.Supply(cfg),
			di.AppModule,
			fx.Invoke(di.PrintBanner),
			fx.StopTimeout(cfg.Server.ShutdownTimeout),
			fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
				return &fxevent.ZapLogger{Logger: logger}
			}),
		)
		if err := app.Err(); err != nil {
			return err
		}

		app.Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	// running without a subcommand serves
	rootCmd.RunE = serveCmd.RunE
}
