package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meikuraledutech/canvas/server"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve saved workflows, the catalog and simulations over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()
			if err := store.CreateSchema(ctx); err != nil {
				return err
			}

			if addr == "" {
				addr = e.cfg.Server.Address
			}
			app := server.New(store, e.catalog, e.simulator(), e.logger)

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := app.ShutdownWithContext(shutdownCtx); err != nil {
					e.logger.Warn("shutdown", zap.Error(err))
				}
			}()

			e.logger.Info("listening", zap.String("address", addr), zap.String("store", e.cfg.Store.Backend))
			return app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (defaults to server.address)")
	return cmd
}
