package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const (
	flagPort        = "port"
	shutdownTimeout = 30 * time.Second
)

func CmdServe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}

			// Handle graceful shutdown
			go func() {
				quit := make(chan os.Signal, 1)
				signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
				<-quit

				slog.Info("shutting down server...")

				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := a.Shutdown(ctx); err != nil {
					slog.Error("shutdown error", "error", err)
				}
			}()

			addr := a.ListenAddr()
			if port, _ := cmd.Flags().GetString(flagPort); port != "" {
				addr = ":" + port
			}
			if err := a.Start(addr); err != nil {
				_ = a.Shutdown(context.Background())
				return err
			}
			return nil
		},
	}
	cmd.Flags().String(flagPort, "", "Override PORT")
	return cmd
}
