// Package main is the entry point for the clicker contract CLI and API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"clicker/config"
	"clicker/internal/app"
	"clicker/internal/logging"
)

const flagLogLevel = "log-level"

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "clicker",
		Short:        "Query and execute the clicker contract",
		SilenceUsage: true,
	}
	root.PersistentFlags().String(flagLogLevel, "", "Override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(
		CmdFortune(),
		CmdScores(),
		CmdUpsertScore(),
		CmdSend(),
		CmdKeys(),
		CmdRefs(),
		CmdTxs(),
		CmdServe(),
	)
	return root
}

// loadApp loads configuration, installs the process logger and wires the app.
// The caller owns the returned app and must shut it down.
func loadApp(cmd *cobra.Command) (*app.App, error) {
	result, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := result.Config.Log.Level
	if override, _ := cmd.Flags().GetString(flagLogLevel); override != "" {
		level = override
	}
	logger, err := logging.New(cmd.ErrOrStderr(), result.Config.Log.Format, level)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	slog.SetDefault(logger)

	return app.New(cmd.Context(), app.Config{AppConfig: result})
}

// withApp runs fn against a freshly wired app and releases it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Shutdown(context.Background()); err != nil {
			slog.Warn("shutdown failed", "error", err)
		}
	}()
	return fn(cmd.Context(), a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
